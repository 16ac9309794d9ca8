package service

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	pricetierdomain "github.com/smallbiznis/fulfillment-billing/internal/pricetier/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/coerce"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
)

type tierRow struct {
	Min        any `json:"min"`
	Max        any `json:"max"`
	Multiplier any `json:"multiplier"`
	Rate       any `json:"rate"`
	Price      any `json:"price"`
}

// ParseConfig decodes and validates a stored tier table. Both a bare list
// and {"tiers": [...]} are accepted; empty input yields a nil Config.
//
// rate is read as a multiplier on the unit price. price replaces the
// unit price for orders in that tier.
func ParseConfig(raw []byte) (pricetierdomain.Config, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var rows []tierRow
	if raw[0] == '{' {
		var wrapper struct {
			Tiers []tierRow `json:"tiers"`
		}
		if err := decode(raw, &wrapper); err != nil {
			return nil, configError(pricetierdomain.ErrInvalidConfig, -1).With("error", err.Error())
		}
		rows = wrapper.Tiers
	} else if err := decode(raw, &rows); err != nil {
		return nil, configError(pricetierdomain.ErrInvalidConfig, -1).With("error", err.Error())
	}

	cfg := make(pricetierdomain.Config, 0, len(rows))
	for i, row := range rows {
		tier, err := buildTier(row, i)
		if err != nil {
			return nil, err
		}
		cfg = append(cfg, tier)
	}

	sortTiers(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if len(cfg) == 0 {
		return nil, nil
	}
	return cfg, nil
}

// ValidateConfig checks a tier table sorted by Min.
//
// Neighbouring tiers either share a boundary, which belongs to the lower
// tier, or are contiguous. Gaps, overlaps and an open tier before the last
// one are configuration errors.
func ValidateConfig(cfg pricetierdomain.Config) error {
	for i, tier := range cfg {
		if tier.Min < 0 {
			return configError(pricetierdomain.ErrInvalidMin, i).With("min", tier.Min)
		}
		if tier.Max != nil && *tier.Max < tier.Min {
			return configError(pricetierdomain.ErrInvalidMax, i).With("min", tier.Min).With("max", *tier.Max)
		}
		switch {
		case tier.Multiplier == nil && tier.Price == nil:
			return configError(pricetierdomain.ErrMissingRate, i)
		case tier.Multiplier != nil && tier.Price != nil:
			return configError(pricetierdomain.ErrAmbiguousRate, i)
		case tier.Multiplier != nil && tier.Multiplier.IsNegative():
			return configError(pricetierdomain.ErrNegativeRate, i).With("multiplier", tier.Multiplier.String())
		case tier.Price != nil && tier.Price.IsNegative():
			return configError(pricetierdomain.ErrNegativeRate, i).With("price", tier.Price.String())
		}

		if i == 0 {
			continue
		}
		prev := cfg[i-1]
		if prev.Max == nil {
			return configError(pricetierdomain.ErrOpenTierNotLast, i-1)
		}
		switch {
		case tier.Min < *prev.Max:
			return configError(pricetierdomain.ErrTierOverlap, i).With("min", tier.Min).With("previous_max", *prev.Max)
		case tier.Min == *prev.Max && tier.Max != nil && *tier.Max == tier.Min:
			return configError(pricetierdomain.ErrTierOverlap, i).With("min", tier.Min).With("previous_max", *prev.Max)
		case tier.Min > *prev.Max+1:
			return configError(pricetierdomain.ErrTierGap, i).With("min", tier.Min).With("previous_max", *prev.Max)
		}
	}
	return nil
}

// ParseSKUList decodes an excluded-SKU list stored as a JSON array or a
// comma separated string.
func ParseSKUList(raw []byte) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var v any
	if err := decode(raw, &v); err != nil {
		return nil, errs.Configuration("invalid excluded skus", pricetierdomain.ErrInvalidSKUList).With("error", err.Error())
	}

	var out []string
	switch x := v.(type) {
	case string:
		for _, part := range strings.Split(x, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []any:
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, errs.Configuration("invalid excluded skus", pricetierdomain.ErrInvalidSKUList).With("item", item)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	default:
		return nil, errs.Configuration("invalid excluded skus", pricetierdomain.ErrInvalidSKUList)
	}
	return out, nil
}

func buildTier(row tierRow, index int) (pricetierdomain.Tier, error) {
	var tier pricetierdomain.Tier

	if row.Min != nil {
		lo, integral, ok := coerce.Integer(row.Min)
		if !ok || !integral {
			return tier, configError(pricetierdomain.ErrInvalidMin, index).With("min", row.Min)
		}
		tier.Min = lo
	}

	if row.Max != nil {
		hi, integral, ok := coerce.Integer(row.Max)
		if !ok || !integral {
			return tier, configError(pricetierdomain.ErrInvalidMax, index).With("max", row.Max)
		}
		tier.Max = &hi
	}

	rate := row.Multiplier
	if rate == nil {
		rate = row.Rate
	} else if row.Rate != nil {
		return tier, configError(pricetierdomain.ErrAmbiguousRate, index)
	}
	if rate != nil {
		d, ok := coerce.Decimal(rate)
		if !ok {
			return tier, configError(pricetierdomain.ErrMissingRate, index).With("multiplier", rate)
		}
		tier.Multiplier = &d
	}
	if row.Price != nil {
		d, ok := coerce.Decimal(row.Price)
		if !ok {
			return tier, configError(pricetierdomain.ErrMissingRate, index).With("price", row.Price)
		}
		tier.Price = &d
	}
	return tier, nil
}

func sortTiers(cfg pricetierdomain.Config) {
	sort.SliceStable(cfg, func(i, j int) bool { return cfg[i].Min < cfg[j].Min })
}

func decode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func configError(cause error, index int) *errs.Error {
	err := errs.Configuration("invalid tier config", cause)
	if index >= 0 {
		err = err.With("tier", index)
	}
	return err
}
