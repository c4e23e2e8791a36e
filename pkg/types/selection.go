package types

import (
	"sort"
	"strings"
)

// Selection is the set of values chosen for each filter dimension. Membership
// is strict: an empty dimension matches nothing.
type Selection struct {
	Platforms  []string `json:"platforms" yaml:"platforms"`
	Categories []string `json:"categories" yaml:"categories"`
	Genders    []string `json:"genders" yaml:"genders"`
	Products   []string `json:"products" yaml:"products"`
}

// Values returns the selected values for a dimension.
func (s Selection) Values(d Dimension) []string {
	switch d {
	case DimPlatform:
		return s.Platforms
	case DimCategory:
		return s.Categories
	case DimGender:
		return s.Genders
	case DimProduct:
		return s.Products
	}
	return nil
}

// With returns a copy of s with dimension d replaced by values.
func (s Selection) With(d Dimension, values []string) Selection {
	switch d {
	case DimPlatform:
		s.Platforms = values
	case DimCategory:
		s.Categories = values
	case DimGender:
		s.Genders = values
	case DimProduct:
		s.Products = values
	}
	return s
}

// Canonical renders the selection in an order-independent form, suitable for
// cache keys. Duplicate values collapse.
func (s Selection) Canonical() string {
	var b strings.Builder
	for _, d := range Dimensions {
		vals := dedupSorted(s.Values(d))
		b.WriteString(string(d))
		b.WriteByte('=')
		for i, v := range vals {
			if i > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(v)
		}
		b.WriteByte(0x1e)
	}
	return b.String()
}

func dedupSorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}

// Options holds the distinct observed values per filter dimension.
type Options struct {
	Platforms  []string `json:"platforms"`
	Categories []string `json:"categories"`
	Genders    []string `json:"genders"`
	Products   []string `json:"products"`
}

// Selection returns a selection that chooses every observed value.
func (o Options) Selection() Selection {
	return Selection{
		Platforms:  append([]string(nil), o.Platforms...),
		Categories: append([]string(nil), o.Categories...),
		Genders:    append([]string(nil), o.Genders...),
		Products:   append([]string(nil), o.Products...),
	}
}
