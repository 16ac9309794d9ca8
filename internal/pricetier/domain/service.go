package domain

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid_tier_config")
	ErrInvalidMin      = errors.New("invalid_tier_min")
	ErrInvalidMax      = errors.New("invalid_tier_max")
	ErrMissingRate     = errors.New("missing_tier_rate")
	ErrAmbiguousRate   = errors.New("ambiguous_tier_rate")
	ErrNegativeRate    = errors.New("negative_tier_rate")
	ErrOpenTierNotLast = errors.New("open_tier_not_last")
	ErrTierOverlap     = errors.New("tier_overlap")
	ErrTierGap         = errors.New("tier_gap")
	ErrInvalidSKUList  = errors.New("invalid_excluded_skus")
)
