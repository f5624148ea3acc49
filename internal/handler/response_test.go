package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/handler"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{appErrors.NewValidationError(appErrors.FieldError{Field: "name", Error: "requis"}), http.StatusBadRequest},
		{appErrors.ErrEmptyContent, http.StatusBadRequest},
		{appErrors.ErrNoRecipients, http.StatusBadRequest},
		{appErrors.ErrUnauthorized, http.StatusUnauthorized},
		{appErrors.NewCampaignNotFound("x"), http.StatusNotFound},
		{errors.Wrap(appErrors.ErrPartnerNotFound, "loading"), http.StatusNotFound},
		{appErrors.ErrTemplateNotFound, http.StatusNotFound},
		{appErrors.NewInvalidTransition("sent", "sending"), http.StatusConflict},
		{errors.Wrap(appErrors.ErrDispatchInProgress, "Échec du démarrage du processus d'envoi"), http.StatusConflict},
		{appErrors.ErrTransportNotConfigured, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, handler.StatusFor(tc.err), tc.err.Error())
	}
}

func TestWriteErrorIncludesFields(t *testing.T) {
	w := httptest.NewRecorder()
	handler.WriteError(w, appErrors.NewValidationError(appErrors.FieldError{Field: "email", Error: "adresse invalide"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"email: adresse invalide","fields":[{"field":"email","error":"adresse invalide"}]}`, w.Body.String())
}
