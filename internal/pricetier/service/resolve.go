package service

import (
	"sort"

	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	pricetierdomain "github.com/smallbiznis/fulfillment-billing/internal/pricetier/domain"
)

// Resolve counts the order's qualifying cases and picks the first tier,
// by ascending Min, whose [Min, Max] holds that count.
//
// Excluded SKUs do not count. A count of zero or less never applies, and
// neither does a count past the last closed tier.
func Resolve(order orderdomain.Order, cfg pricetierdomain.Config, excluded []string) pricetierdomain.Resolution {
	skus := order.SKUQuantities()
	skip := orderdomain.NormalizeSKUSet(excluded)

	keys := make([]string, 0, len(skus))
	for sku := range skus {
		keys = append(keys, sku)
	}
	sort.Strings(keys)

	var res pricetierdomain.Resolution
	for _, sku := range keys {
		if _, ok := skip[sku]; ok {
			res.ExcludedPresent = append(res.ExcludedPresent, sku)
			continue
		}
		res.TotalCases += skus[sku]
	}

	if res.TotalCases <= 0 || len(cfg) == 0 {
		return res
	}

	tiers := make(pricetierdomain.Config, len(cfg))
	copy(tiers, cfg)
	sortTiers(tiers)

	for i := range tiers {
		if tiers[i].Contains(res.TotalCases) {
			tier := tiers[i]
			res.Applies = true
			res.Tier = &tier
			break
		}
	}
	return res
}
