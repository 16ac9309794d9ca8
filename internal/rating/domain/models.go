// Package domain contains the compiled pricing plans and per-order charges.
package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	pricetierdomain "github.com/smallbiznis/fulfillment-billing/internal/pricetier/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
)

// ChargeType selects how a service is priced.
type ChargeType string

const (
	ChargeFlat            ChargeType = "flat"
	ChargePerQuantity     ChargeType = "per_quantity"
	ChargePerWeight       ChargeType = "per_weight"
	ChargeTieredCaseBased ChargeType = "tiered_case_based"
	ChargeCustom          ChargeType = "custom"
)

var chargeTypes = map[string]ChargeType{
	"flat":              ChargeFlat,
	"per_quantity":      ChargePerQuantity,
	"per_item":          ChargePerQuantity,
	"per_weight":        ChargePerWeight,
	"tiered_case_based": ChargeTieredCaseBased,
	"case_based":        ChargeTieredCaseBased,
	"tiered":            ChargeTieredCaseBased,
	"custom":            ChargeCustom,
}

// ParseChargeType accepts the canonical names, their legacy aliases and
// hyphenated spellings.
func ParseChargeType(raw string) (ChargeType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	ct, ok := chargeTypes[key]
	if !ok {
		return "", ErrUnknownChargeType
	}
	return ct, nil
}

// Plan is a customer service compiled for evaluation. RuleGroup is nil when
// the service applies unconditionally.
type Plan struct {
	CustomerServiceID snowflake.ID
	ServiceID         snowflake.ID
	ServiceCode       string
	Name              string
	ChargeType        ChargeType
	UnitPrice         decimal.Decimal
	Tiers             pricetierdomain.Config
	ExcludedSKUs      []string
	RuleGroup         ruledomain.Node
	QuantityField     string
}

// Reason explains a Charge.
type Reason string

const (
	ReasonApplied        Reason = "applied"
	ReasonRuleNotMatched Reason = "rule_not_matched"
	ReasonNoTierMatched  Reason = "no_tier_matched"
	ReasonZeroQuantity   Reason = "zero_quantity"
	ReasonMissingWeight  Reason = "missing_weight"
	ReasonMissingField   Reason = "missing_field"
)

// Charge is what one service costs for one order. Amount is unrounded.
type Charge struct {
	Applied  bool
	Amount   decimal.Decimal
	Quantity decimal.Decimal
	Reason   Reason
	Tier     *pricetierdomain.Resolution
}

// NotApplied returns a zero charge for the given reason.
func NotApplied(reason Reason) Charge {
	return Charge{Amount: decimal.Zero, Quantity: decimal.Zero, Reason: reason}
}
