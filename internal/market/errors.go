package market

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetNotFound indicates an asset id outside the configured universe
	// or without price data.
	ErrAssetNotFound = errors.New("market: asset not found")

	// ErrInvalidRange indicates a range label that is not one of the known ranges.
	ErrInvalidRange = errors.New("market: invalid range")

	// ErrNoData indicates a price source returned no usable rows.
	ErrNoData = errors.New("market: no price data")
)

// AssetError wraps an error with the asset it concerns.
type AssetError struct {
	AssetID string
	Wrapped error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.AssetID, e.Wrapped)
}

func (e *AssetError) Unwrap() error {
	return e.Wrapped
}

// NotFound returns an AssetError wrapping ErrAssetNotFound.
func NotFound(id string) error {
	return &AssetError{AssetID: id, Wrapped: ErrAssetNotFound}
}
