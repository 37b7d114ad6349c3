package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/swiftsale/label-annotator/dto"
	"github.com/swiftsale/label-annotator/service"
	"github.com/swiftsale/label-annotator/store"
)

type MailingHandler struct {
	mailing       *store.MailingStore
	exportService *service.ExportService
}

func NewMailingHandler(mailing *store.MailingStore, exportService *service.ExportService) *MailingHandler {
	return &MailingHandler{
		mailing:       mailing,
		exportService: exportService,
	}
}

// SearchEntries handles the GET /api/v1/mailing-list endpoint
func (h *MailingHandler) SearchEntries(c *gin.Context) {
	var filters dto.MailingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid search filters", err)
		return
	}
	sortBySpent := c.Query("sort") == "spent"

	entries, err := h.mailing.Search(c.Request.Context(), filters, sortBySpent)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to search mailing list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// GetEntry handles the GET /api/v1/mailing-list/:id endpoint
func (h *MailingHandler) GetEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid entry id", err)
		return
	}

	entry, err := h.mailing.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, dto.ErrEntryNotFound) {
			h.sendError(c, http.StatusNotFound, err.Error(), err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to load entry", err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SetChecked handles the PUT /api/v1/mailing-list/:id/checked endpoint
func (h *MailingHandler) SetChecked(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid entry id", err)
		return
	}

	var request struct {
		Checked *bool `json:"checked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Checked flag is required", err)
		return
	}

	if err := h.mailing.SetChecked(c.Request.Context(), id, *request.Checked); err != nil {
		if errors.Is(err, dto.ErrEntryNotFound) {
			h.sendError(c, http.StatusNotFound, err.Error(), err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to update entry", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "checked": *request.Checked})
}

// ClearEntries handles the DELETE /api/v1/mailing-list endpoint
func (h *MailingHandler) ClearEntries(c *gin.Context) {
	if err := h.mailing.Clear(c.Request.Context()); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to clear mailing list", err)
		return
	}

	log.Println("Mailing list cleared")
	c.JSON(http.StatusOK, gin.H{"message": "mailing list cleared"})
}

// ImportEmails handles the POST /api/v1/mailing-list/import-emails endpoint
func (h *MailingHandler) ImportEmails(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "CSV file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	summary, err := h.mailing.BulkImportEmails(c.Request.Context(), file)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to import emails", err)
		return
	}

	log.Printf("Email import: %d updated, %d added, %d skipped", summary.Updated, summary.Added, summary.Skipped)
	c.JSON(http.StatusOK, summary)
}

// ExportLabels handles the POST /api/v1/mailing-list/export-labels endpoint
func (h *MailingHandler) ExportLabels(c *gin.Context) {
	var request dto.ExportLabelsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Output path is required", err)
		return
	}

	entries, err := h.exportEntries(c, &request)
	if err != nil {
		return // exportEntries already responded
	}

	if err := h.exportService.GenerateLabelsPDF(entries, request.OutputPath); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to generate labels", err)
		return
	}

	log.Printf("Exported %d labels to %s", len(entries), request.OutputPath)
	c.JSON(http.StatusOK, gin.H{
		"message":     "labels exported",
		"count":       len(entries),
		"output_path": request.OutputPath,
	})
}

// exportEntries resolves the entries named by the request. Explicit IDs win;
// with no IDs every checked entry is exported.
func (h *MailingHandler) exportEntries(c *gin.Context, request *dto.ExportLabelsRequest) ([]dto.MailingListEntry, error) {
	if len(request.IDs) == 0 {
		entries, err := h.mailing.CheckedEntries(c.Request.Context())
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to load checked entries", err)
			return nil, err
		}
		return entries, nil
	}

	entries := make([]dto.MailingListEntry, 0, len(request.IDs))
	for _, id := range request.IDs {
		entry, err := h.mailing.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, dto.ErrEntryNotFound) {
				h.sendError(c, http.StatusNotFound, err.Error(), err)
				return nil, err
			}
			h.sendError(c, http.StatusInternalServerError, "Failed to load entry", err)
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// sendError sends a structured error response
func (h *MailingHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "MAILING_LIST_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
