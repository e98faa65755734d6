package server

import (
	"image-labeler/internal/annotation"
)

// LabelSpec names a label and optionally its ARGB hex color.
type LabelSpec struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// MaskRequest is the body of POST /api/v1/mask. Label ids index Labels
// shifted by one; id 0 is always the background.
type MaskRequest struct {
	Width    int                      `json:"width"`
	Height   int                      `json:"height"`
	Labels   []LabelSpec              `json:"labels"`
	Boxes    []annotation.BoundingBox `json:"boxes"`
	Polygons []annotation.Polygon     `json:"polygons"`
}

// MaskResponse is returned for ?format=json.
type MaskResponse struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Rows   [][]int `json:"rows"`
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Kind string `json:"kind" binding:"required,oneof=box poly"`
	Text string `json:"text"`
}

type ValidateResponse struct {
	Valid bool                    `json:"valid"`
	Box   *annotation.BoundingBox `json:"box,omitempty"`
	Poly  *annotation.Polygon     `json:"poly,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
