package analysis

import (
	"sort"
	"strings"

	"crypto-compare/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// SortAssets returns a new slice with the same quotes ordered by opt.
// The name field compares names lexicographically; every other field compares
// its numeric value with nulls treated as zero. The sort is stable so equal
// values keep their fetch order across re-renders.
func SortAssets(assets []models.MAssetQuote, opt models.MSortOption) []models.MAssetQuote {
	sorted := make([]models.MAssetQuote, len(assets))
	copy(sorted, assets)

	less := lessFunc(opt)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// -----------------------------------------------------------------------------

func lessFunc(opt models.MSortOption) func(a, b models.MAssetQuote) bool {
	desc := opt.Direction == models.SortDesc

	if opt.Field == models.SortFieldName {
		return func(a, b models.MAssetQuote) bool {
			c := compareNames(a.Name, b.Name)
			if desc {
				return c > 0
			}
			return c < 0
		}
	}

	value := fieldValue(opt.Field)
	return func(a, b models.MAssetQuote) bool {
		c := value(a).Cmp(value(b))
		if desc {
			return c > 0
		}
		return c < 0
	}
}

// -----------------------------------------------------------------------------

// compareNames orders case-insensitively first, then by raw bytes so the
// result is total
func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// -----------------------------------------------------------------------------

func fieldValue(field models.MSortField) func(models.MAssetQuote) decimal.Decimal {
	pick := func(n decimal.NullDecimal) decimal.Decimal {
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	}

	switch field {
	case models.SortFieldTotalVolume:
		return func(q models.MAssetQuote) decimal.Decimal { return pick(q.TotalVolume) }
	case models.SortFieldPrice:
		return func(q models.MAssetQuote) decimal.Decimal { return pick(q.CurrentPrice) }
	case models.SortFieldChange24h:
		return func(q models.MAssetQuote) decimal.Decimal { return pick(q.PriceChangePercentage24h) }
	default:
		return func(q models.MAssetQuote) decimal.Decimal { return pick(q.MarketCap) }
	}
}
