// Package httpx holds the JSON and middleware helpers used by every module's HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 10 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorBody struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindConflict, apperrors.KindBadRequest:
		return http.StatusBadRequest
	case apperrors.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": {"kind", "message"}}. Unclassified errors are logged
// and returned with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)
	kind := apperrors.KindOf(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
	}
	WriteJSON(w, status, map[string]errorBody{
		"error": {Kind: kind, Message: apperrors.MessageOf(err)},
	})
}

// DecodeJSON decodes the request body into dst and validates its struct tags.
func DecodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.BadRequest("decode", "request body is empty")
		}
		return apperrors.BadRequest("decode", fmt.Sprintf("malformed request body: %v", err))
	}
	return Validate(dst)
}

// Validate runs the validator over v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.BadRequest("validate", fmt.Sprintf("field %s failed %q validation", fe.Field(), fe.Tag()))
		}
		return apperrors.BadRequest("validate", err.Error())
	}
	return nil
}
