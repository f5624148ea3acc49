// internal/handler/campaign_handler.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/edutour-mailer/internal/service"
)

// CampaignHandler serves the campaign report: the campaign row, per-status
// recipient counts and every recipient row.
type CampaignHandler struct {
	Service *service.CampaignService
}

func (h *CampaignHandler) GetCampaignHandlerWithStats(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.GetCampaignDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, details)
}
