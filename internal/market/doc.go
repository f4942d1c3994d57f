// Package market defines the domain types shared by the correlation backend
// and its clients.
//
//   - [Asset]: tradable instrument with a display name
//   - [PricePoint]: daily close for an asset
//   - [Range]: lookback window (1M .. 10Y, MAX, YTD)
//   - [CorrelationCell], [CorrelationMatrix]: pairwise correlation payload
//   - [Comparison]: aligned cumulative series for two assets
//   - [Insight], [Insights]: textual highlights derived from a matrix
//
// The JSON field names are the wire format of the HTTP API.
package market
