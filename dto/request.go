package dto

import (
	"errors"
	"mime/multipart"
)

// AnnotateRequest carries an uploaded label PDF plus optional stamp geometry
// overrides. Geometry fields are points; zero means "use the default".
type AnnotateRequest struct {
	File              *multipart.FileHeader `form:"file" binding:"required"`
	OutputPath        string                `form:"output_path"`
	StampX            float64               `form:"stamp_x"`
	StampY            float64               `form:"stamp_y"`
	FirstNameX        float64               `form:"first_name_x"`
	FirstNameY        float64               `form:"first_name_y"`
	FontName          string                `form:"font_name"`
	LabelFontSize     int                   `form:"label_font_size"`
	BinFontSize       int                   `form:"bin_font_size"`
	FirstNameFontSize int                   `form:"first_name_font_size"`
	FallbackFontSize  int                   `form:"fallback_font_size"`
}

// Validate performs basic validation on the request.
func (r *AnnotateRequest) Validate() error {
	if r.File == nil {
		return errors.New("label pdf is required")
	}
	return nil
}

// ExportLabelsRequest selects mailing-list entries for label-sheet export.
// An empty IDs slice exports every checked entry.
type ExportLabelsRequest struct {
	IDs        []int64 `json:"ids"`
	OutputPath string  `json:"output_path" binding:"required"`
}
