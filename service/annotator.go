package service

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const inch = 72.0

// StampGeometry positions the overlay text on a label page. Coordinates are
// points from the bottom-left corner. Different label layouts need different
// offsets, so geometry always travels with the request rather than living in
// package state.
type StampGeometry struct {
	StampX            float64
	StampY            float64
	FirstNameX        float64
	FirstNameY        float64
	FontName          string
	LabelFontSize     int
	BinFontSize       int
	FirstNameFontSize int
	FallbackFontSize  int
}

// DefaultStampGeometry matches the standard 4x6in thermal label layout.
func DefaultStampGeometry() StampGeometry {
	return StampGeometry{
		StampX:            0.40 * inch,
		StampY:            5.4 * inch,
		FirstNameX:        0.40 * inch,
		FirstNameY:        4.72 * inch,
		FontName:          "Helvetica-Bold",
		LabelFontSize:     14,
		BinFontSize:       31,
		FirstNameFontSize: 19,
		FallbackFontSize:  10,
	}
}

// PageStamp is the resolved annotation state for one page: either a bin
// assignment (optionally with a pickup first name) or the giveaway fallback.
type PageStamp struct {
	HasBin    bool
	BinNumber int
	IsPickup  bool
	FirstName string
}

// Annotator renders page stamps as pdfcpu text watermarks and merges them
// onto the original pages in a single pass.
type Annotator struct {
	geo StampGeometry
}

func NewAnnotator(geo StampGeometry) *Annotator {
	return &Annotator{geo: geo}
}

// Apply stamps every page listed in stamps (1-based page numbers) and writes
// the whole annotated document to w. Unlisted pages pass through untouched.
func (a *Annotator) Apply(pdfData []byte, stamps map[int]PageStamp, w io.Writer) error {
	wmMap := make(map[int][]*model.Watermark, len(stamps))
	for pageNr, stamp := range stamps {
		wms, err := a.watermarksFor(stamp)
		if err != nil {
			return err
		}
		wmMap[pageNr] = wms
	}

	if err := api.AddWatermarksSliceMap(bytes.NewReader(pdfData), w, wmMap, nil); err != nil {
		return fmt.Errorf("stamp pages: %w", err)
	}
	return nil
}

func (a *Annotator) watermarksFor(stamp PageStamp) ([]*model.Watermark, error) {
	geo := a.geo
	var wms []*model.Watermark

	add := func(text string, points int, x, y float64) error {
		wm, err := a.textWatermark(text, points, x, y)
		if err != nil {
			return err
		}
		wms = append(wms, wm)
		return nil
	}

	if stamp.HasBin {
		labelY := geo.StampY + float64(geo.FirstNameFontSize) + 4
		if err := add("SwiftSale Bin:", geo.LabelFontSize, geo.StampX, labelY); err != nil {
			return nil, err
		}
		binY := geo.StampY + float64(geo.FirstNameFontSize) - 4
		if err := add(fmt.Sprintf("#%d", stamp.BinNumber), geo.BinFontSize, geo.StampX+1.6*inch, binY); err != nil {
			return nil, err
		}
		if stamp.IsPickup && stamp.FirstName != "" {
			name := fmt.Sprintf("****%s****", stamp.FirstName)
			if err := add(name, geo.FirstNameFontSize, geo.FirstNameX, geo.FirstNameY); err != nil {
				return nil, err
			}
		}
		return wms, nil
	}

	// No bin on file: likely a giveaway or flash-sale page, which are not
	// bin-tracked.
	labelY := geo.StampY + float64(geo.FirstNameFontSize) + 8
	if err := add("SwiftSale:", geo.LabelFontSize, geo.StampX, labelY); err != nil {
		return nil, err
	}
	noteY := geo.StampY + float64(geo.FirstNameFontSize) + 4
	if err := add("Givvy or Flash Sale?", geo.FallbackFontSize, geo.StampX+1.3*inch, noteY); err != nil {
		return nil, err
	}
	return wms, nil
}

func (a *Annotator) textWatermark(text string, points int, x, y float64) (*model.Watermark, error) {
	desc := fmt.Sprintf(
		"fontname:%s, points:%d, scale:1 abs, rot:0, pos:bl, off:%.1f %.1f, fillcol:#000000, op:1",
		a.geo.FontName, points, x, y,
	)
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("build watermark %q: %w", text, err)
	}
	return wm, nil
}
