package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/corrlab/internal/market"
)

// Presets are named asset universes selectable with --preset.
var Presets = map[string][]market.Asset{
	"default": market.DefaultAssets,
	"equities": {
		{ID: "SPY", Name: "S&P 500 (SPY)"},
		{ID: "QQQ", Name: "Nasdaq 100 (QQQ)"},
		{ID: "IWM", Name: "Russell 2000 (IWM)"},
		{ID: "EFA", Name: "MSCI EAFE (EFA)"},
	},
	"macro": {
		{ID: "SPY", Name: "S&P 500 (SPY)"},
		{ID: "TLT", Name: "US 20Y+ Treasury (TLT)"},
		{ID: "GLD", Name: "Gold (GLD)"},
		{ID: "DXY", Name: "US Dollar Index (DXY)"},
	},
	"crypto": {
		{ID: "BTCUSD", Name: "Bitcoin (BTC-USD)"},
		{ID: "ETHUSD", Name: "Ethereum (ETH-USD)"},
		{ID: "QQQ", Name: "Nasdaq 100 (QQQ)"},
		{ID: "GLD", Name: "Gold (GLD)"},
	},
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset replaces the asset list and resets the dashboard pair to the
// first two assets of the preset.
func (c *Config) ApplyPreset(name string) error {
	assets, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	c.Assets = make([]market.Asset, len(assets))
	copy(c.Assets, assets)
	c.Dashboard.AssetA = assets[0].ID
	c.Dashboard.AssetB = assets[0].ID
	if len(assets) > 1 {
		c.Dashboard.AssetB = assets[1].ID
	}
	return nil
}
