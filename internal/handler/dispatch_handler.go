// internal/handler/dispatch_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

// DispatchHandler serves the bulk send trigger. Its error contract is narrower
// than the rest of the API: 400 for a bad id, 409 while another run owns the
// campaign, 500 for everything else.
type DispatchHandler struct {
	Dispatcher service.CampaignDispatcher
	Timeout    time.Duration
	Logger     *zap.Logger
}

func (h *DispatchHandler) SendBulkEmails(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignID string `json:"campaignId"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	res, err := h.Dispatcher.Dispatch(ctx, body.CampaignID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErrors.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, appErrors.ErrDispatchInProgress):
			status = http.StatusConflict
		}
		if h.Logger != nil && status == http.StatusInternalServerError {
			h.Logger.Error("bulk dispatch failed", zap.String("campaign_id", body.CampaignID), zap.Error(err))
		}
		WriteJSON(w, status, map[string]string{"error": dispatchMessage(err)})
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// dispatchMessage drops the field prefix so a missing id reads as a sentence.
func dispatchMessage(err error) string {
	var verr *appErrors.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		return verr.Fields[0].Error
	}
	return err.Error()
}
