package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/photovault/internal/common"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	payload, err := json.Marshal(ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// statusFor maps a domain error onto an HTTP status. Unclassified errors come
// from object storage and are reported as a bad gateway.
func statusFor(err error) int {
	var noKey *types.NoSuchKey
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound), errors.As(err, &noKey):
		return http.StatusNotFound
	case errors.Is(err, common.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusBadGateway {
		h.logger.Error(r.Context(), "object storage request failed", "path", r.URL.Path, "error", err)
	}
	respondError(w, status, err.Error())
}

func parseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", common.ErrValidation, err)
	}
	return nil
}
