// Package render draws the dashboard's charts and choropleth map.
package render

import (
	"image/color"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
)

// Series colours. Historical is drawn dark on the light page background.
var seriesColors = map[string]color.RGBA{
	analytics.HistoricalSeries: {R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	"SSP1":                     {R: 0xe4, G: 0x1a, B: 0x1c, A: 0xff},
	"SSP2":                     {R: 0x37, G: 0x7e, B: 0xb8, A: 0xff},
	"SSP3":                     {R: 0x4d, G: 0xaf, B: 0x4a, A: 0xff},
	"SSP4":                     {R: 0xff, G: 0x7f, B: 0x00, A: 0xff},
	"SSP5":                     {R: 0x98, G: 0x4e, B: 0xa3, A: 0xff},
}

var fallbackColor = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

// SeriesColor returns the colour used for a series name.
func SeriesColor(name string) color.RGBA {
	if c, ok := seriesColors[name]; ok {
		return c
	}
	return fallbackColor
}

func muted(c color.RGBA) color.RGBA {
	// Blend halfway toward white.
	return color.RGBA{
		R: uint8((int(c.R) + 0xff) / 2),
		G: uint8((int(c.G) + 0xff) / 2),
		B: uint8((int(c.B) + 0xff) / 2),
		A: 0xff,
	}
}

var (
	noDataColor   color.Color = color.White
	outlineColor  color.Color = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	selectedColor color.Color = color.Black
)
