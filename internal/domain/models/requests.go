package models

// ViewRequest carries the per-view query parameters.
type ViewRequest struct {
	Month string `query:"month" json:"month" validate:"omitempty,max=32"`
	Top   int    `query:"top" json:"top" validate:"omitempty,gte=1,lte=20"`
}

// ChartRequest sizes a rendered chart image.
type ChartRequest struct {
	ViewRequest
	Width  int `query:"width" json:"width" validate:"omitempty,gte=200,lte=4000"`
	Height int `query:"height" json:"height" validate:"omitempty,gte=200,lte=4000"`
}
