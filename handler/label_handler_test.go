package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swiftsale/label-annotator/dto"
	"github.com/swiftsale/label-annotator/service"
)

func TestGeometryFromRequestDefaults(t *testing.T) {
	geo := geometryFromRequest(&dto.AnnotateRequest{})

	assert.Equal(t, service.DefaultStampGeometry(), geo)
}

func TestGeometryFromRequestOverlaysEveryField(t *testing.T) {
	request := &dto.AnnotateRequest{
		StampX:            10,
		StampY:            20,
		FirstNameX:        30,
		FirstNameY:        40,
		FontName:          "Courier-Bold",
		LabelFontSize:     11,
		BinFontSize:       22,
		FirstNameFontSize: 33,
		FallbackFontSize:  44,
	}

	geo := geometryFromRequest(request)

	assert.Equal(t, service.StampGeometry{
		StampX:            10,
		StampY:            20,
		FirstNameX:        30,
		FirstNameY:        40,
		FontName:          "Courier-Bold",
		LabelFontSize:     11,
		BinFontSize:       22,
		FirstNameFontSize: 33,
		FallbackFontSize:  44,
	}, geo)
}

func TestGeometryFromRequestPartialOverride(t *testing.T) {
	geo := geometryFromRequest(&dto.AnnotateRequest{BinFontSize: 40})

	defaults := service.DefaultStampGeometry()
	assert.Equal(t, 40, geo.BinFontSize)
	assert.Equal(t, defaults.StampX, geo.StampX)
	assert.Equal(t, defaults.FontName, geo.FontName)
	assert.Equal(t, defaults.FallbackFontSize, geo.FallbackFontSize)
}
