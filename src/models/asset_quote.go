package models

import "github.com/shopspring/decimal"

// MAssetQuote is one row of the /coins/markets listing.
// Numeric fields are nullable: upstream nulls are kept as Valid=false.
type MAssetQuote struct {
	ID                       string              `json:"id"`
	Name                     string              `json:"name"`
	Symbol                   string              `json:"symbol"`
	Image                    string              `json:"image"`
	CurrentPrice             decimal.NullDecimal `json:"current_price"`
	MarketCap                decimal.NullDecimal `json:"market_cap"`
	TotalVolume              decimal.NullDecimal `json:"total_volume"`
	PriceChangePercentage24h decimal.NullDecimal `json:"price_change_percentage_24h"`
}

// MComparisonEntry is the snapshot of an asset taken when it was pinned.
// It is not refreshed by later fetches.
type MComparisonEntry struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Symbol string              `json:"symbol"`
	Image  string              `json:"image"`
	Price  decimal.NullDecimal `json:"price"`
	Change decimal.NullDecimal `json:"change"`
}

// NewComparisonEntry projects a quote into a comparison entry
func NewComparisonEntry(q MAssetQuote) MComparisonEntry {
	return MComparisonEntry{
		ID:     q.ID,
		Name:   q.Name,
		Symbol: q.Symbol,
		Image:  q.Image,
		Price:  q.CurrentPrice,
		Change: q.PriceChangePercentage24h,
	}
}
