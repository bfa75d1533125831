package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/middleware"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst. It writes the 400
// itself and reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func principal(w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return nil, false
	}
	return p, true
}

// trainerScope resolves the trainer a request acts on. Trainers always act
// on themselves; admins must name the trainer.
func trainerScope(p *middleware.Principal, requested string) (string, error) {
	switch p.Role {
	case models.RoleTrainer:
		if requested != "" && requested != p.UserID {
			return "", ierr.NewError("trainer scope mismatch").
				WithHint("You do not have access to this trainer").
				Mark(ierr.ErrPermissionDenied)
		}
		return p.UserID, nil
	case models.RoleAdmin:
		if requested == "" {
			return "", ierr.NewError("trainer id missing").
				WithHint("trainerId is required").
				Mark(ierr.ErrValidation)
		}
		return requested, nil
	default:
		return "", ierr.NewError("role cannot act on a trainer").
			WithHint("You do not have access to this trainer").
			Mark(ierr.ErrPermissionDenied)
	}
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ierr.NewError("invalid integer query parameter").
			WithHintf("%s must be a non-negative integer", key).
			WithReportableDetails(map[string]any{key: raw}).
			Mark(ierr.ErrValidation)
	}
	return n, nil
}
