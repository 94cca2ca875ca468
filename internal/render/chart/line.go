package chart

import (
	"io"
	"math"
	"time"

	"StockDash/internal/domain/models"

	gochart "github.com/wcharczuk/go-chart/v2"
)

func renderLine(w io.Writer, c *models.Chart, opts Options) error {
	series := make([]gochart.Series, 0, len(c.Series))
	var (
		minX, maxX time.Time
		minY, maxY = math.Inf(1), math.Inf(-1)
	)

	for i, s := range c.Series {
		xs := make([]time.Time, 0, len(s.Data))
		ys := make([]float64, 0, len(s.Data))
		for _, p := range s.Data {
			if p.Time == nil || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				continue
			}
			xs = append(xs, *p.Time)
			ys = append(ys, p.Value)
			if minX.IsZero() || p.Time.Before(minX) {
				minX = *p.Time
			}
			if p.Time.After(maxX) {
				maxX = *p.Time
			}
			minY = math.Min(minY, p.Value)
			maxY = math.Max(maxY, p.Value)
		}
		if len(xs) == 0 {
			continue
		}
		col := s.Color
		if col == "" {
			col = PaletteColor(i)
		}
		stroke := parseColor(col, gochart.ColorBlue)
		series = append(series, gochart.TimeSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: stroke,
				StrokeWidth: 2,
				DotColor:    stroke,
				DotWidth:    dotWidth(len(xs)),
			},
		})
	}
	if len(series) == 0 {
		return placeholder(w, c.Title, opts)
	}

	// go-chart rejects zero-width ranges; widen degenerate ones.
	xAxis := gochart.XAxis{Name: c.XAxis, ValueFormatter: gochart.TimeDateValueFormatter}
	if !maxX.After(minX) {
		xAxis.Range = &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(minX.Add(-24 * time.Hour)),
			Max: gochart.TimeToFloat64(maxX.Add(24 * time.Hour)),
		}
	}
	yAxis := gochart.YAxis{Name: c.YAxis, ValueFormatter: gochart.FloatValueFormatter}
	if maxY == minY {
		yAxis.Range = &gochart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
	}

	ch := gochart.Chart{
		TitleStyle: gochart.Style{Hidden: true},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{title(c.Title, opts.Width), gochart.Legend(&ch)}

	return ch.Render(opts.Format.provider(), w)
}

// dotWidth marks points only on sparse series.
func dotWidth(n int) float64 {
	if n <= 30 {
		return 3
	}
	return 0
}
