package render

import (
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// priceFloatPrec is wide enough for any price CoinGecko returns
const priceFloatPrec = 256

// Placeholder is shown for values the API returned as null
const Placeholder = "-"

// -----------------------------------------------------------------------------

// Abbreviate shortens market cap and volume magnitudes:
// >=1e9 "x.xxB", >=1e6 "x.xxM", >=1e3 "x.xxK", otherwise the integer part.
// Never used for prices.
func Abbreviate(v decimal.Decimal) string {
	switch {
	case v.GreaterThanOrEqual(billion):
		return v.Div(billion).StringFixed(2) + "B"
	case v.GreaterThanOrEqual(million):
		return v.Div(million).StringFixed(2) + "M"
	case v.GreaterThanOrEqual(thousand):
		return v.Div(thousand).StringFixed(2) + "K"
	default:
		return v.Truncate(0).String()
	}
}

// AbbreviateNull is Abbreviate with a placeholder for nulls
func AbbreviateNull(v decimal.NullDecimal) string {
	if !v.Valid {
		return Placeholder
	}
	return Abbreviate(v.Decimal)
}

// -----------------------------------------------------------------------------

// FormatPrice groups the integer part with commas and keeps the upstream
// fractional digits, e.g. "$64,000.5" or "$0.00001234".
func FormatPrice(v decimal.NullDecimal) string {
	if !v.Valid {
		return Placeholder
	}

	sign := ""
	if v.Decimal.IsNegative() {
		sign = "-"
	}

	// The shortest 'f' form at this precision reproduces the decimal digits
	f, ok := new(big.Float).SetPrec(priceFloatPrec).SetString(v.Decimal.Abs().String())
	if !ok {
		return Placeholder
	}
	return sign + "$" + humanize.BigCommaf(f)
}

// -----------------------------------------------------------------------------

// FormatPercent returns the absolute value with two decimals and the sign
// class ("positive" for >= 0). Nulls count as zero.
func FormatPercent(v decimal.NullDecimal) (direction, percent string) {
	d := decimal.Zero
	if v.Valid {
		d = v.Decimal
	}
	direction = "positive"
	if d.IsNegative() {
		direction = "negative"
	}
	return direction, d.Abs().StringFixed(2)
}
