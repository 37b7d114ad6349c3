package client

import (
	"fmt"
	"log"

	"github.com/otiai10/gosseract/v2"
)

// OCRClient wraps Tesseract for label pages that carry no extractable text
// layer (scanned or flattened labels).
type OCRClient struct {
	tessdataPrefix string
}

// NewOCRClient creates a new Tesseract-backed OCR client. An empty
// tessdataPrefix leaves the system default in place.
func NewOCRClient(tessdataPrefix string) *OCRClient {
	return &OCRClient{
		tessdataPrefix: tessdataPrefix,
	}
}

// ExtractTextFromImage runs OCR over one page image file.
func (c *OCRClient) ExtractTextFromImage(imagePath string) (string, error) {
	ocr := gosseract.NewClient()
	defer ocr.Close()

	if c.tessdataPrefix != "" {
		ocr.SetTessdataPrefix(c.tessdataPrefix)
	}
	if err := ocr.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := ocr.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := ocr.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// Close performs cleanup
func (c *OCRClient) Close() {
	log.Println("OCR client closed")
}
