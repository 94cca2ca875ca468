package models

import "time"

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "date"
	Align string `json:"align"` // "left", "right"
}

// Table is a render-ready table: every cell is already formatted.
type Table struct {
	Title   string     `json:"title,omitempty"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// KPI is a headline metric card.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChartKind selects the chart renderer.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartHeatmap ChartKind = "heatmap"
)

// ChartPoint is a single data point. Line charts set Time, bar charts Label.
type ChartPoint struct {
	Label string     `json:"label,omitempty"`
	Time  *time.Time `json:"time,omitempty"`
	Value float64    `json:"value"`
	Color string     `json:"color,omitempty"`
}

// ChartSeries is a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Color string       `json:"color,omitempty"`
	Data  []ChartPoint `json:"data"`
}

// LegendItem maps a category to its color.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Heatmap is a dense matrix with nil for missing cells.
type Heatmap struct {
	Rows    []string     `json:"rows"`
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
	Min     float64      `json:"min"`
	Max     float64      `json:"max"`
	Center  float64      `json:"center"`
	Label   string       `json:"label"`
}

// Chart is a backend-neutral chart description.
type Chart struct {
	Kind     ChartKind     `json:"kind"`
	Title    string        `json:"title"`
	XAxis    string        `json:"x_axis,omitempty"`
	YAxis    string        `json:"y_axis,omitempty"`
	Series   []ChartSeries `json:"series,omitempty"`
	Legend   []LegendItem  `json:"legend,omitempty"`
	ZeroLine bool          `json:"zero_line,omitempty"`
	Heatmap  *Heatmap      `json:"heatmap,omitempty"`
}

// Result is everything one view render produces.
type Result struct {
	View        ViewInfo  `json:"view"`
	KPIs        []KPI     `json:"kpis,omitempty"`
	Months      []string  `json:"months,omitempty"`
	Month       string    `json:"month,omitempty"`
	Table       *Table    `json:"table"`
	Chart       *Chart    `json:"chart,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
