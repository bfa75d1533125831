package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string         `json:"error"`             // Error message
	Details map[string]any `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// FieldErrors flattens validator errors into field -> message.
func FieldErrors(err error) map[string]any {
	var verrs validator.ValidationErrors
	if !ierr.As(err, &verrs) {
		return nil
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
	}
	return details
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = FieldErrors(validationErr)
	}
	WriteJSON(w, statusCode, errorResp)
}

// WriteError maps err onto its HTTP status and writes its safe message.
// Internal details of unclassified errors are logged, never returned.
func WriteError(w http.ResponseWriter, err error) {
	status := ierr.HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		logger.L.Errorw("[HTTP] request failed", "status", status, "error", err)
	}

	resp := ErrorResponse{Error: ierr.SafeMessage(err)}
	if status < http.StatusInternalServerError {
		resp.Details = ierr.ReportableDetails(err)
	}
	WriteJSON(w, status, resp)
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
