// Package viz holds the visual vocabulary shared by the terminal dashboard,
// the CLI and the chart renderers:
//
//   - [Theme]: dark and light color schemes, toggled with T in the dashboard
//   - [Styles]: lipgloss styles derived from a theme
//   - [Sparkline] and [CorrelationBar]: one-line inline graphics
//   - [Canvas]: a braille dot matrix for scatter plots
//
// The dark theme is the default. The chosen theme is persisted in the config
// file so the next session starts with it.
package viz
