package handler

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swiftsale/label-annotator/dto"
	"github.com/swiftsale/label-annotator/service"
)

type LabelHandler struct {
	labelService *service.LabelService
	outputDir    string
}

func NewLabelHandler(labelService *service.LabelService, outputDir string) *LabelHandler {
	return &LabelHandler{
		labelService: labelService,
		outputDir:    outputDir,
	}
}

// AnnotateLabels handles the POST /api/v1/labels/annotate endpoint
func (h *LabelHandler) AnnotateLabels(c *gin.Context) {
	log.Println("Received label annotation request")

	var request dto.AnnotateRequest
	if err := c.ShouldBind(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	inputPath := filepath.Join(os.TempDir(), fmt.Sprintf("labels_%d.pdf", time.Now().UnixNano()))
	if err := c.SaveUploadedFile(request.File, inputPath); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to save uploaded file", err)
		return
	}
	defer os.Remove(inputPath)

	outputPath := request.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(h.outputDir, fmt.Sprintf("annotated_%s.pdf", time.Now().Format("20060102_150405")))
	}

	log.Printf("Annotating %s -> %s", request.File.Filename, outputPath)

	result, err := h.labelService.AnnotateLabelsWithGeometry(c.Request.Context(), inputPath, outputPath, geometryFromRequest(&request))
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to annotate labels", err)
		return
	}

	log.Println("Label annotation completed successfully")
	c.JSON(http.StatusOK, dto.AnnotateResponse{
		Message:     "labels annotated",
		Result:      *result,
		ProcessedAt: time.Now().Format(time.RFC3339),
	})
}

// geometryFromRequest overlays non-zero request fields on the defaults.
func geometryFromRequest(request *dto.AnnotateRequest) service.StampGeometry {
	geo := service.DefaultStampGeometry()
	if request.StampX > 0 {
		geo.StampX = request.StampX
	}
	if request.StampY > 0 {
		geo.StampY = request.StampY
	}
	if request.FirstNameX > 0 {
		geo.FirstNameX = request.FirstNameX
	}
	if request.FirstNameY > 0 {
		geo.FirstNameY = request.FirstNameY
	}
	if request.LabelFontSize > 0 {
		geo.LabelFontSize = request.LabelFontSize
	}
	if request.BinFontSize > 0 {
		geo.BinFontSize = request.BinFontSize
	}
	if request.FirstNameFontSize > 0 {
		geo.FirstNameFontSize = request.FirstNameFontSize
	}
	if request.FallbackFontSize > 0 {
		geo.FallbackFontSize = request.FallbackFontSize
	}
	if request.FontName != "" {
		geo.FontName = request.FontName
	}
	return geo
}

// sendError sends a structured error response
func (h *LabelHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "ANNOTATION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
