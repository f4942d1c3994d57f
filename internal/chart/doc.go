// Package chart draws the cumulative-return comparison of two assets, either
// as an ANSI line chart for the terminal or as a PNG image for the web.
package chart
