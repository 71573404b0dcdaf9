package interfaces

import (
	"context"

	"crypto-compare/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource fetches the market listing from an external provider.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchMarkets performs one request for the first page of assets ordered
	// by the given option. Any failure matches helpers.ErrFetchFailed.
	FetchMarkets(ctx context.Context, order models.MSortOption) ([]models.MAssetQuote, error)
}
