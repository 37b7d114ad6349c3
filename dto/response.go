package dto

import "errors"

// Custom errors
var (
	ErrEmptyUsername = errors.New("username must be a non-empty string")
	ErrEntryNotFound = errors.New("mailing list entry not found")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnnotateResponse is the final response for an annotation run.
type AnnotateResponse struct {
	Message     string         `json:"message"`
	Result      AnnotateResult `json:"result"`
	ProcessedAt string         `json:"processed_at"`
}
