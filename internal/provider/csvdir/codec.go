// Package csvdir reads and writes the four entity tables as CSV files in a
// directory. The codec is shared with the S3 CSV source.
package csvdir

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Entity table file names.
const (
	InfluencersFile = "influencers.csv"
	PostsFile       = "posts.csv"
	TrackingFile    = "tracking_data.csv"
	PayoutsFile     = "payouts.csv"
)

// Files lists the entity tables in load order.
var Files = []string{InfluencersFile, PostsFile, TrackingFile, PayoutsFile}

var (
	influencerColumns = []string{"ID", "name", "category", "gender", "follower_count", "platform"}
	postColumns       = []string{"influencer_id", "platform", "date", "URL", "caption", "reach", "likes", "comments"}
	trackingColumns   = []string{"source", "campaign", "influencer_id", "user_id", "product", "date", "orders", "revenue"}
	payoutColumns     = []string{"influencer_id", "basis", "rate"}
)

// dateLayouts are tried in order when parsing date columns.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", time.DateOnly}

// Opener returns a reader for one entity file.
type Opener func(name string) (io.ReadCloser, error)

// Creator returns a writer for one entity file.
type Creator func(name string) (io.WriteCloser, error)

// Decode reads the four entity tables. Columns are matched by header name;
// extra columns, such as derived payout totals, are ignored.
func Decode(open Opener) (*types.Dataset, error) {
	ds := &types.Dataset{}
	readers := map[string]func(*table) error{
		InfluencersFile: func(t *table) error {
			for t.next() {
				ds.Influencers = append(ds.Influencers, types.Influencer{
					ID:            t.integer("ID"),
					Name:          t.str("name"),
					Category:      t.str("category"),
					Gender:        t.str("gender"),
					FollowerCount: t.integer("follower_count"),
					Platform:      t.str("platform"),
				})
			}
			return t.err
		},
		PostsFile: func(t *table) error {
			for t.next() {
				ds.Posts = append(ds.Posts, types.Post{
					InfluencerID: t.integer("influencer_id"),
					Platform:     t.str("platform"),
					Date:         t.timestamp("date"),
					URL:          t.str("URL"),
					Caption:      t.str("caption"),
					Reach:        t.integer("reach"),
					Likes:        t.integer("likes"),
					Comments:     t.integer("comments"),
				})
			}
			return t.err
		},
		TrackingFile: func(t *table) error {
			for t.next() {
				ds.Tracking = append(ds.Tracking, types.TrackingEvent{
					Source:       t.str("source"),
					Campaign:     t.str("campaign"),
					InfluencerID: t.integer("influencer_id"),
					UserID:       t.integer("user_id"),
					Product:      t.str("product"),
					Date:         t.timestamp("date"),
					Orders:       t.integer("orders"),
					Revenue:      t.amount("revenue"),
				})
			}
			return t.err
		},
		PayoutsFile: func(t *table) error {
			for t.next() {
				ds.Payouts = append(ds.Payouts, types.PayoutTerms{
					InfluencerID: t.integer("influencer_id"),
					Basis:        types.Basis(t.str("basis")),
					Rate:         t.decimal("rate"),
				})
			}
			return t.err
		},
	}
	required := map[string][]string{
		InfluencersFile: influencerColumns,
		PostsFile:       postColumns,
		TrackingFile:    trackingColumns,
		PayoutsFile:     payoutColumns,
	}

	for _, name := range Files {
		if err := decodeFile(open, name, required[name], readers[name]); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func decodeFile(open Opener, name string, required []string, read func(*table) error) error {
	rc, err := open(name)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	t, err := newTable(rc, required)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := read(t); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

// Encode writes the four entity tables.
func Encode(ds *types.Dataset, create Creator) error {
	itoa := strconv.Itoa
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	date := func(t time.Time) string { return t.UTC().Format(time.RFC3339) }

	writers := map[string][][]string{}
	for _, inf := range ds.Influencers {
		writers[InfluencersFile] = append(writers[InfluencersFile],
			[]string{itoa(inf.ID), inf.Name, inf.Category, inf.Gender, itoa(inf.FollowerCount), inf.Platform})
	}
	for _, p := range ds.Posts {
		writers[PostsFile] = append(writers[PostsFile],
			[]string{itoa(p.InfluencerID), p.Platform, date(p.Date), p.URL, p.Caption, itoa(p.Reach), itoa(p.Likes), itoa(p.Comments)})
	}
	for _, ev := range ds.Tracking {
		writers[TrackingFile] = append(writers[TrackingFile],
			[]string{ev.Source, ev.Campaign, itoa(ev.InfluencerID), itoa(ev.UserID), ev.Product, date(ev.Date), itoa(ev.Orders), ev.Revenue.String()})
	}
	for _, p := range ds.Payouts {
		writers[PayoutsFile] = append(writers[PayoutsFile],
			[]string{itoa(p.InfluencerID), string(p.Basis), ftoa(p.Rate)})
	}
	headers := map[string][]string{
		InfluencersFile: influencerColumns,
		PostsFile:       postColumns,
		TrackingFile:    trackingColumns,
		PayoutsFile:     payoutColumns,
	}

	for _, name := range Files {
		if err := encodeFile(create, name, headers[name], writers[name]); err != nil {
			return err
		}
	}
	return nil
}

func encodeFile(create Creator, name string, header []string, rows [][]string) (err error) {
	wc, err := create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()

	cw := csv.NewWriter(wc)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// table walks CSV records by column name, keeping the first conversion error.
type table struct {
	r    *csv.Reader
	cols map[string]int
	rec  []string
	line int
	err  error
}

func newTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	t := &table{r: cr, cols: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		t.cols[h] = i
	}
	for _, c := range required {
		if _, ok := t.cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return t, nil
}

func (t *table) next() bool {
	if t.err != nil {
		return false
	}
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		t.err = err
		return false
	}
	t.rec = rec
	t.line++
	return true
}

func (t *table) str(col string) string {
	i := t.cols[col]
	if i >= len(t.rec) {
		return ""
	}
	return t.rec[i]
}

func (t *table) fail(col string, err error) {
	if t.err == nil {
		t.err = fmt.Errorf("line %d column %s: %w", t.line, col, err)
	}
}

func (t *table) integer(col string) int {
	s := t.str(col)
	n, err := strconv.Atoi(s)
	if err != nil {
		// Integer columns written by float-typed tools come out as "12.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			t.fail(col, err)
			return 0
		}
		return int(f)
	}
	return n
}

func (t *table) decimal(col string) float64 {
	f, err := strconv.ParseFloat(t.str(col), 64)
	if err != nil {
		t.fail(col, err)
	}
	return f
}

func (t *table) amount(col string) types.Amount {
	a, err := types.ParseAmount(t.str(col))
	if err != nil {
		t.fail(col, err)
	}
	return a
}

func (t *table) timestamp(col string) time.Time {
	s := t.str(col)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	t.fail(col, fmt.Errorf("unrecognized date %q", s))
	return time.Time{}
}
