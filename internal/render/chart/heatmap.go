package chart

import (
	"io"
	"math"

	"StockDash/internal/domain/models"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	heatmapTop       = 60
	heatmapColorBar  = 18
	heatmapRightGap  = 110
	heatmapLabelSize = 9.0
	heatmapGradSteps = 64
)

// renderHeatmap draws the matrix cell by cell on a raw go-chart renderer:
// row labels on the left, column labels below, and a color bar on the right.
func renderHeatmap(w io.Writer, c *models.Chart, opts Options) error {
	hm := c.Heatmap
	if hm == nil || len(hm.Rows) == 0 || len(hm.Columns) == 0 {
		return placeholder(w, c.Title, opts)
	}

	r, err := opts.Format.provider()(opts.Width, opts.Height)
	if err != nil {
		return err
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	fillRect(r, 0, 0, opts.Width, opts.Height, drawing.ColorWhite)
	drawCentered(r, c.Title, opts.Width/2, 30, titleFontSize, drawing.ColorBlack)

	r.SetFontSize(heatmapLabelSize)
	rowLabelWidth := 0
	for _, l := range hm.Rows {
		rowLabelWidth = max(rowLabelWidth, r.MeasureText(l).Width())
	}
	colLabelHeight := 0
	for _, l := range hm.Columns {
		colLabelHeight = max(colLabelHeight, r.MeasureText(l).Width())
	}

	left := rowLabelWidth + 20
	top := heatmapTop
	right := opts.Width - heatmapRightGap
	bottom := opts.Height - colLabelHeight - 20
	if right-left < len(hm.Columns) || bottom-top < len(hm.Rows) {
		return placeholder(w, c.Title, opts)
	}

	cellW := float64(right-left) / float64(len(hm.Columns))
	cellH := float64(bottom-top) / float64(len(hm.Rows))

	limit := math.Max(math.Abs(hm.Min-hm.Center), math.Abs(hm.Max-hm.Center))
	if limit == 0 {
		limit = 1
	}

	annotate := cellW >= 44 && cellH >= 18
	for i, row := range hm.Values {
		y0 := top + int(math.Round(float64(i)*cellH))
		y1 := top + int(math.Round(float64(i+1)*cellH))
		for j, v := range row {
			if v == nil || math.IsNaN(*v) {
				continue
			}
			x0 := left + int(math.Round(float64(j)*cellW))
			x1 := left + int(math.Round(float64(j+1)*cellW))
			fill := Diverging(*v-hm.Center, limit)
			fillRect(r, x0, y0, x1, y1, fill)

			if annotate {
				txt := gochart.FloatValueFormatterWithFormat(*v, "%.2f")
				col := drawing.ColorBlack
				if math.Abs(*v-hm.Center) > limit*0.6 {
					col = drawing.ColorWhite
				}
				r.SetFontSize(heatmapLabelSize)
				tb := r.MeasureText(txt)
				r.SetFontColor(col)
				r.Text(txt, (x0+x1)/2-tb.Width()/2, (y0+y1)/2+tb.Height()/2)
			}
		}
	}

	r.SetFontSize(heatmapLabelSize)
	r.SetFontColor(drawing.ColorBlack)
	for i, l := range hm.Rows {
		tb := r.MeasureText(l)
		cy := top + int(math.Round((float64(i)+0.5)*cellH))
		r.Text(l, left-8-tb.Width(), cy+tb.Height()/2)
	}
	for j, l := range hm.Columns {
		tb := r.MeasureText(l)
		cx := left + int(math.Round((float64(j)+0.5)*cellW))
		rotatedText(r, l, cx-tb.Height()/2, bottom+8)
	}

	drawColorBar(r, hm, limit, right+30, top, bottom)
	return r.Save(w)
}

func drawColorBar(r gochart.Renderer, hm *models.Heatmap, limit float64, left, top, bottom int) {
	height := bottom - top
	for s := 0; s < heatmapGradSteps; s++ {
		y0 := top + height*s/heatmapGradSteps
		y1 := top + height*(s+1)/heatmapGradSteps
		// top of the bar is the positive end
		v := limit - 2*limit*(float64(s)+0.5)/heatmapGradSteps
		fillRect(r, left, y0, left+heatmapColorBar, y1, Diverging(v, limit))
	}

	r.SetFontSize(heatmapLabelSize)
	r.SetFontColor(drawing.ColorBlack)
	ticks := []struct {
		v float64
		y int
	}{
		{hm.Center + limit, top},
		{hm.Center, top + height/2},
		{hm.Center - limit, bottom},
	}
	for _, t := range ticks {
		txt := gochart.FloatValueFormatterWithFormat(t.v, "%.2f")
		tb := r.MeasureText(txt)
		r.Text(txt, left+heatmapColorBar+6, t.y+tb.Height()/2)
	}

	if hm.Label != "" {
		tb := r.MeasureText(hm.Label)
		rotatedText(r, hm.Label, left+heatmapColorBar+48, top+height/2-tb.Width()/2)
	}
}

// rotatedText draws text turned a quarter clockwise around (x, y). The
// raster renderer accumulates rotations, so each call starts from a cleared
// transform.
func rotatedText(r gochart.Renderer, text string, x, y int) {
	r.ClearTextRotation()
	r.SetTextRotation(math.Pi / 2)
	r.Text(text, x, y)
	r.ClearTextRotation()
}
