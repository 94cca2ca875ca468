// Package table renders view tables as markdown and HTML and formats their cells.
package table

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"StockDash/internal/domain/models"

	"github.com/dustin/go-humanize"
	md "github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var converter = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders t as a pipe table.
func Markdown(t *models.Table) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if t.Title != "" {
		doc.H3(t.Title)
	}

	set := md.TableSet{
		Alignment: make([]md.TableAlignment, 0, len(t.Columns)),
		Header:    make([]string, 0, len(t.Columns)),
		Rows:      make([][]string, 0, len(t.Rows)),
	}
	for _, c := range t.Columns {
		set.Header = append(set.Header, escape(c.Label))
		if c.Align == "right" {
			set.Alignment = append(set.Alignment, md.AlignRight)
		} else {
			set.Alignment = append(set.Alignment, md.AlignLeft)
		}
	}
	for _, r := range t.Rows {
		row := make([]string, len(t.Columns))
		for i := range row {
			if i < len(r) {
				row[i] = escape(r[i])
			}
		}
		set.Rows = append(set.Rows, row)
	}
	doc.Table(set)

	return doc.String()
}

// HTML renders t to an HTML table through its markdown form. Raw HTML in
// cells is not passed through.
func HTML(t *models.Table) (string, error) {
	var out bytes.Buffer
	if err := converter.Convert([]byte(Markdown(t)), &out); err != nil {
		return "", fmt.Errorf("convert table: %w", err)
	}
	return out.String(), nil
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// Number formats v with thousands separators and a fixed number of decimals.
// NaN and infinities render as an empty cell.
func Number(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if decimals <= 0 {
		return humanize.FormatFloat("#,###.", v)
	}
	return humanize.FormatFloat("#,###."+strings.Repeat("#", decimals), v)
}
