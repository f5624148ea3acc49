// internal/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string                 `json:"error"`
	Fields []appErrors.FieldError `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var (
		verr *appErrors.ValidationError
		terr *appErrors.ErrInvalidTransition
	)
	switch {
	case errors.As(err, &verr),
		errors.Is(err, appErrors.ErrInvalidInput),
		errors.Is(err, appErrors.ErrEmptyContent),
		errors.Is(err, appErrors.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case appErrors.IsCampaignNotFound(err),
		errors.Is(err, appErrors.ErrPartnerNotFound),
		errors.Is(err, appErrors.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.As(err, &terr), errors.Is(err, appErrors.ErrDispatchInProgress):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, StatusFor(err), err)
}

func WriteErrorStatus(w http.ResponseWriter, status int, err error) {
	body := ErrorBody{Error: err.Error()}
	var verr *appErrors.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	WriteJSON(w, status, body)
}

// DecodeJSON reads the request body into v, answering 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorStatus(w, http.StatusBadRequest, errors.New("invalid body"))
		return false
	}
	return true
}
