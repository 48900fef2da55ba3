package dashboard

import (
	"fmt"
	"math"
	"strconv"
)

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

// CSS renders the color as an rgba() expression.
func (c Color) CSS() string {
	alpha := math.Round(float64(c.A)/255*100) / 100
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// Palette holds the latency series colors.
var Palette = [5]Color{
	{R: 231, G: 76, B: 60, A: 255},
	{R: 46, G: 204, B: 113, A: 255},
	{R: 52, G: 152, B: 219, A: 255},
	{R: 241, G: 196, B: 15, A: 255},
	{R: 155, G: 89, B: 182, A: 255},
}

// BarColor fills the bandwidth bars.
var BarColor = Color{R: 52, G: 152, B: 219, A: 178}

// SeriesColor picks the palette entry for a switch id (id mod palette size).
func SeriesColor(dpid int) Color {
	n := len(Palette)
	return Palette[((dpid%n)+n)%n]
}
