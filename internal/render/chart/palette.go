package chart

import (
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette is the series color cycle.
var Palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Fixed colors for gainers and losers.
const (
	ColorGain = "#16A34A"
	ColorLoss = "#DC2626"
)

// PaletteColor returns the i-th color of the cycle.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// parseColor accepts "#rrggbb" or "rrggbb"; anything else falls back to fallback.
func parseColor(s string, fallback drawing.Color) drawing.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	return drawing.ColorFromHex(s)
}

// diverging stops from blue (negative) through near-white to red (positive).
var diverging = []drawing.Color{
	{R: 33, G: 102, B: 172, A: 255},
	{R: 146, G: 197, B: 222, A: 255},
	{R: 247, G: 247, B: 247, A: 255},
	{R: 244, G: 165, B: 130, A: 255},
	{R: 178, G: 24, B: 43, A: 255},
}

// Diverging maps v in [-limit, limit] onto the blue-white-red scale centered
// at zero. Values outside the range are clamped.
func Diverging(v, limit float64) drawing.Color {
	if limit <= 0 || math.IsNaN(v) {
		return diverging[len(diverging)/2]
	}
	t := (v/limit + 1) / 2
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(diverging)-1)
	i := int(math.Floor(pos))
	if i >= len(diverging)-1 {
		return diverging[len(diverging)-1]
	}
	f := pos - float64(i)
	a, b := diverging[i], diverging[i+1]
	return drawing.Color{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: 255,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
