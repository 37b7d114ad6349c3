package service

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/swiftsale/label-annotator/dto"
)

// BusinessInfo is the FROM block printed on exported mailing labels.
type BusinessInfo struct {
	Name         string
	AddressLine1 string
	City         string
	State        string
	ZipCode      string
}

// ExportService renders selected mailing-list entries as a 4x6 label PDF,
// one page per entry, via pdfcpu's JSON page-description API.
type ExportService struct {
	business BusinessInfo
}

func NewExportService(business BusinessInfo) *ExportService {
	return &ExportService{business: business}
}

type labelText struct {
	Value    string     `json:"value"`
	Position [2]float64 `json:"pos"`
	Font     labelFont  `json:"font"`
}

type labelFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type labelContent struct {
	Text []labelText `json:"text"`
}

type labelPage struct {
	Content labelContent `json:"content"`
}

type labelDocument struct {
	MediaBox [4]float64           `json:"mediaBox"`
	Origin   string               `json:"origin"`
	Pages    map[string]labelPage `json:"pages"`
}

// GenerateLabelsPDF writes one label page per entry to outputPath.
func (s *ExportService) GenerateLabelsPDF(entries []dto.MailingListEntry, outputPath string) error {
	if len(entries) == 0 {
		return fmt.Errorf("no entries to export")
	}

	doc := labelDocument{
		MediaBox: [4]float64{0, 0, 4 * inch, 6 * inch},
		Origin:   "lowerLeft",
		Pages:    make(map[string]labelPage, len(entries)),
	}

	for i, entry := range entries {
		doc.Pages[strconv.Itoa(i+1)] = labelPage{
			Content: labelContent{Text: s.labelTexts(entry)},
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal label document: %w", err)
	}

	jsonFile, err := os.CreateTemp("", "labels-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(jsonFile.Name())

	if _, err := jsonFile.Write(data); err != nil {
		jsonFile.Close()
		return fmt.Errorf("write label document: %w", err)
	}
	jsonFile.Close()

	if err := api.CreateFile("", jsonFile.Name(), outputPath, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("create label pdf: %w", err)
	}
	return nil
}

// labelTexts lays out the FROM block top-left and the TO block mid-page,
// matching the printed 4x6 label layout.
func (s *ExportService) labelTexts(entry dto.MailingListEntry) []labelText {
	var texts []labelText

	add := func(value string, size int, x, y float64, bold bool) {
		if value == "" {
			return
		}
		name := "Helvetica"
		if bold {
			name = "Helvetica-Bold"
		}
		texts = append(texts, labelText{
			Value:    value,
			Position: [2]float64{x, y},
			Font:     labelFont{Name: name, Size: size},
		})
	}

	fromY := 5.75 * inch
	add(s.business.Name, 9, 0.3*inch, fromY, true)
	fromY -= 0.14 * inch
	add(s.business.AddressLine1, 8, 0.3*inch, fromY, false)
	if s.business.City != "" {
		fromY -= 0.14 * inch
		add(fmt.Sprintf("%s, %s %s", s.business.City, s.business.State, s.business.ZipCode),
			8, 0.3*inch, fromY, false)
	}

	toY := 4.5 * inch
	add(entry.FullName, 12, 0.5*inch, toY, true)
	toY -= 0.3 * inch
	add(entry.AddressLine1, 12, 0.5*inch, toY, false)
	if entry.AddressLine2 != "" {
		toY -= 0.3 * inch
		add(entry.AddressLine2, 12, 0.5*inch, toY, false)
	}
	toY -= 0.3 * inch
	cityLine := entry.City
	if entry.State != "" {
		cityLine += ", " + entry.State
	}
	if entry.ZipCode != "" {
		cityLine += " " + entry.ZipCode
	}
	add(cityLine, 12, 0.5*inch, toY, false)

	return texts
}
