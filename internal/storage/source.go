package storage

import (
	"context"

	"github.com/san-kum/corrlab/internal/market"
)

// PriceSource yields the daily closes of one asset. Implementations return
// an error wrapping market.ErrAssetNotFound when the asset has no data.
type PriceSource interface {
	Prices(ctx context.Context, assetID string) ([]market.PricePoint, error)
}
