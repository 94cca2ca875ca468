package chart

import (
	"io"
	"math"

	"StockDash/internal/domain/models"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// labelRotation tilts x labels once there are too many to sit side by side.
const labelRotation = 45

func renderBar(w io.Writer, c *models.Chart, opts Options) error {
	var points []models.ChartPoint
	var seriesColor string
	if len(c.Series) > 0 {
		points = c.Series[0].Data
		seriesColor = c.Series[0].Color
	}

	bars := make([]gochart.Value, 0, len(points))
	lo, hi := 0.0, 0.0
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		col := p.Color
		if col == "" {
			col = seriesColor
		}
		if col == "" {
			col = Palette[0]
		}
		fill := parseColor(col, gochart.ColorBlue)
		bars = append(bars, gochart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 1,
			},
		})
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if len(bars) == 0 {
		return placeholder(w, c.Title, opts)
	}

	// Bars always start at zero, so the range must include it.
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	yRange := &gochart.ContinuousRange{Min: lo, Max: hi}
	if lo < 0 {
		yRange.Min = lo - pad
	}
	if hi > 0 {
		yRange.Max = hi + pad
	}

	plotWidth := opts.Width - 160
	barWidth := int(float64(plotWidth) / float64(len(bars)) * 0.7)
	barWidth = clamp(barWidth, 4, 60)
	spacing := clamp(barWidth/2, 2, 30)

	xStyle := gochart.Style{FontSize: 9, TextWrap: gochart.TextWrapNone}
	padding := gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}
	if len(bars) > 12 {
		xStyle.FontSize = 8
		xStyle.TextRotationDegrees = labelRotation
		labels := make([]string, len(bars))
		for i, b := range bars {
			labels[i] = b.Label
		}
		h, err := rotatedHeight(labels, xStyle.FontSize, labelRotation)
		if err != nil {
			return err
		}
		padding.Bottom = min(padding.Bottom+h+gochart.DefaultXAxisMargin, opts.Height/2)
	}

	bc := gochart.BarChart{
		TitleStyle: gochart.Style{Hidden: true},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: padding},
		BarWidth:   barWidth,
		BarSpacing: spacing,
		XAxis:      xStyle,
		YAxis: gochart.YAxis{
			Name:           c.YAxis,
			Range:          yRange,
			ValueFormatter: gochart.FloatValueFormatter,
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
		Elements:     []gochart.Renderable{title(c.Title, opts.Width)},
	}
	if c.ZeroLine {
		bc.Elements = append(bc.Elements, zeroLine(yRange.Min, yRange.Max))
	}
	if len(c.Legend) > 0 {
		bc.Elements = append(bc.Elements, legend(c.Legend))
	}

	return bc.Render(opts.Format.provider(), w)
}

// zeroLine draws a horizontal rule at y=0 across the plot area.
func zeroLine(lo, hi float64) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, _ gochart.Style) {
		if hi <= lo || lo > 0 || hi < 0 {
			return
		}
		y := canvas.Bottom - int(math.Round((0-lo)/(hi-lo)*float64(canvas.Height())))
		r.SetStrokeColor(drawing.ColorBlack)
		r.SetStrokeWidth(1)
		r.MoveTo(canvas.Left, y)
		r.LineTo(canvas.Right, y)
		r.Stroke()
	}
}

// legend draws color swatches with labels in the top-right corner of the plot.
func legend(items []models.LegendItem) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		const swatch, lineHeight = 10, 16

		r.ClearTextRotation()
		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontSize(9)
		width := 0
		for _, it := range items {
			if tw := r.MeasureText(it.Label).Width(); tw > width {
				width = tw
			}
		}
		left := canvas.Right - width - swatch - 24
		top := canvas.Top + 8

		fillRect(r, left-6, top-6, canvas.Right-4, top+len(items)*lineHeight, drawing.Color{R: 255, G: 255, B: 255, A: 220})
		for i, it := range items {
			y := top + i*lineHeight
			fillRect(r, left, y, left+swatch, y+swatch, parseColor(it.Color, gochart.ColorBlue))
			r.SetFontSize(9)
			r.SetFontColor(drawing.ColorBlack)
			r.Text(it.Label, left+swatch+6, y+swatch)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
