package service

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/swiftsale/label-annotator/client"
)

// PDFProcessor yields one text blob per page of a label document. The
// annotation pipeline only consumes text; page rendering stays in the
// Annotator.
type PDFProcessor interface {
	ExtractPageTexts(pdfData []byte) ([]string, error)
	PageCount(pdfData []byte) (int, error)
}

type pdfProcessor struct {
	ocr *client.OCRClient
}

// NewPDFProcessor returns a processor backed by the embedded text layer,
// falling back to OCR for pages without one. A nil ocr client disables the
// fallback.
func NewPDFProcessor(ocr *client.OCRClient) PDFProcessor {
	return &pdfProcessor{ocr: ocr}
}

func (p *pdfProcessor) ExtractPageTexts(pdfData []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	totalPages := r.NumPage()
	texts := make([]string, 0, totalPages)

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		var textBuilder strings.Builder
		rows, _ := page.GetTextByRow()
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					textBuilder.WriteString(" ")
				}
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}

		text := textBuilder.String()
		if strings.TrimSpace(text) == "" && p.ocr != nil {
			ocrText, err := p.ocrPage(pdfData, pageIndex)
			if err != nil {
				log.Printf("OCR fallback failed for page %d: %v", pageIndex, err)
			} else {
				text = ocrText
			}
		}
		texts = append(texts, text)
	}

	return texts, nil
}

func (p *pdfProcessor) PageCount(pdfData []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(pdfData), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return count, nil
}

// ocrPage extracts the page's embedded images and runs OCR over them.
// Label pages without a text layer are typically a single full-page scan.
func (p *pdfProcessor) ocrPage(pdfData []byte, pageIndex int) (string, error) {
	tempDir, err := os.MkdirTemp("", "label_images")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "label-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	pages := []string{strconv.Itoa(pageIndex)}
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, pages, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return "", fmt.Errorf("failed to read temp dir: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	var textBuilder strings.Builder
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		text, err := p.ocr.ExtractTextFromImage(filepath.Join(tempDir, file.Name()))
		if err != nil {
			log.Printf("OCR failed for %s: %v", file.Name(), err)
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
