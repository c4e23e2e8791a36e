package types

import "errors"

// Sentinel errors returned at the edges of the pipeline (loading, config, I/O).
// The metric pipeline itself never fails.
var (
	ErrDuplicateInfluencer = errors.New("duplicate influencer id")
	ErrDuplicatePayout     = errors.New("duplicate payout record for influencer")
	ErrUnknownTable        = errors.New("unknown report table")
	ErrUnknownSource       = errors.New("unknown source type")
	ErrInvalidBasis        = errors.New("invalid payout basis")
)
