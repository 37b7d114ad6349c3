package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swiftsale/label-annotator/dto"
	"github.com/swiftsale/label-annotator/store"
)

type BinHandler struct {
	bins *store.BinStore
}

func NewBinHandler(bins *store.BinStore) *BinHandler {
	return &BinHandler{
		bins: bins,
	}
}

// AssignBin handles the POST /api/v1/bins endpoint
func (h *BinHandler) AssignBin(c *gin.Context) {
	var request struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Username is required", err)
		return
	}

	bin, err := h.bins.Assign(c.Request.Context(), request.Username)
	if err != nil {
		if errors.Is(err, dto.ErrEmptyUsername) {
			h.sendError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to assign bin", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   request.Username,
		"bin_number": bin,
	})
}

// ListBins handles the GET /api/v1/bins endpoint
func (h *BinHandler) ListBins(c *gin.Context) {
	assignments, err := h.bins.List(c.Request.Context())
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to list bins", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(assignments),
		"bins":  assignments,
	})
}

// ClearBins handles the DELETE /api/v1/bins endpoint
func (h *BinHandler) ClearBins(c *gin.Context) {
	if err := h.bins.Clear(c.Request.Context()); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to clear bins", err)
		return
	}

	log.Println("Bin assignments cleared")
	c.JSON(http.StatusOK, gin.H{"message": "bin assignments cleared"})
}

// sendError sends a structured error response
func (h *BinHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "BIN_ASSIGNMENT_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
