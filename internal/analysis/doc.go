// Package analysis turns daily closes into the statistics the service
// serves.
//
//   - [LogReturns], [FilterRange] and [Align]: return series on common dates
//   - [Pearson], [Volatility] and [Cumulative]: pairwise statistics and the
//     base-100 performance series
//   - [ReturnPairs] and [LinearFit]: the return scatter and its regression
//     line
//
// Payload numbers go through [Round], which rounds half away from zero.
package analysis
