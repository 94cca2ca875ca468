// Package chart draws chart specs to SVG or PNG with go-chart.
package chart

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"

	"StockDash/internal/domain/models"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatPNG {
		return gochart.PNG
	}
	return func(width, height int) (gochart.Renderer, error) {
		r, err := gochart.SVG(width, height)
		if err != nil {
			return nil, err
		}
		return svgText{r}, nil
	}
}

// svgText escapes text bodies, which go-chart writes into the SVG verbatim.
type svgText struct {
	gochart.Renderer
}

func (r svgText) Text(body string, x, y int) {
	r.Renderer.Text(html.EscapeString(body), x, y)
}

// Options sizes the output image.
type Options struct {
	Format Format
	Width  int
	Height int
}

const (
	DefaultWidth  = 1400
	DefaultHeight = 700
)

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Render writes c to w. Charts without data render a "No data" placeholder.
func Render(w io.Writer, c *models.Chart, opts Options) error {
	if c == nil {
		return errors.New("nil chart")
	}
	opts = opts.withDefaults()

	var err error
	switch c.Kind {
	case models.ChartBar:
		err = renderBar(w, c, opts)
	case models.ChartLine:
		err = renderLine(w, c, opts)
	case models.ChartHeatmap:
		err = renderHeatmap(w, c, opts)
	default:
		return fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", c.Kind, err)
	}
	return nil
}

// placeholder draws the title and a centered notice on a blank canvas.
func placeholder(w io.Writer, text string, opts Options) error {
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

	drawCentered(r, text, opts.Width/2, 30, titleFontSize, drawing.ColorBlack)
	drawCentered(r, "No data", opts.Width/2, opts.Height/2, 14, gochart.ColorAlternateGray)
	return r.Save(w)
}

func fillRect(r gochart.Renderer, left, top, right, bottom int, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeColor(c)
	r.SetStrokeWidth(0)
	r.MoveTo(left, top)
	r.LineTo(right, top)
	r.LineTo(right, bottom)
	r.LineTo(left, bottom)
	r.LineTo(left, top)
	r.Close()
	r.Fill()
}

func drawCentered(r gochart.Renderer, text string, cx, baseline int, size float64, c drawing.Color) {
	r.SetFontSize(size)
	r.SetFontColor(c)
	tb := r.MeasureText(text)
	r.Text(text, cx-tb.Width()/2, baseline)
}

const titleFontSize = 16

// title replaces go-chart's own title, which inherits the rotation left
// behind by the y-axis name.
func title(text string, width int) gochart.Renderable {
	return func(r gochart.Renderer, _ gochart.Box, defaults gochart.Style) {
		if text == "" {
			return
		}
		r.ClearTextRotation()
		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		drawCentered(r, text, width/2, 30, titleFontSize, drawing.ColorBlack)
	}
}

// rotatedHeight measures how far the longest label reaches below its
// baseline origin when drawn at deg degrees.
func rotatedHeight(labels []string, size, deg float64) (int, error) {
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return 0, err
	}
	r, err := gochart.SVG(1, 1)
	if err != nil {
		return 0, err
	}
	r.SetDPI(gochart.DefaultDPI)
	r.SetFont(font)
	r.SetFontSize(size)

	rad := gochart.DegreesToRadians(deg)
	longest := 0.0
	for _, l := range labels {
		tb := r.MeasureText(l)
		h := float64(tb.Width())*math.Sin(rad) + float64(tb.Height())*math.Cos(rad)
		longest = math.Max(longest, h)
	}
	return int(math.Ceil(longest)), nil
}
