// Package matrix lays out a correlation matrix as a grid of display cells.
//
// For an N-asset matrix the [Grid] has (N+1)×(N+1) cells. Row 0 and column 0
// hold asset headers and the top-left corner is empty. Diagonal cells carry
// the constant label "1.00" with no color and no actions. Every other cell is
// labeled with its coefficient to two decimals, colored through
// [colormap.Palette], and exposes a selection action (the asset pair) and a
// hover action (the full backing cell, for tooltips).
//
// The grid is independent of the output medium; [Grid.Terminal] draws it with
// lipgloss, and the export and api packages draw it as SVG and HTML.
package matrix
