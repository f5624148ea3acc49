// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/middleware"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func createdBy(r *http.Request) *string {
	if id, ok := middleware.UserID(r.Context()); ok {
		return &id
	}
	return nil
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	body.CreatedBy = createdBy(r)

	campaign, err := c.CampaignService.SaveDraft(r.Context(), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}

	campaign, err := c.CampaignService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handler.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendNewCampaign creates a campaign from the body and sends it at once.
func (c *CampaignController) SendNewCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	body.CreatedBy = createdBy(r)
	c.send(w, r, "", &body)
}

// SendCampaign sends a stored campaign. A non-empty body replaces its content first.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var in *service.CampaignInput
	var body service.CampaignInput
	err := json.NewDecoder(r.Body).Decode(&body)
	switch {
	case err == nil:
		in = &body
	case !errors.Is(err, io.EOF):
		handler.WriteErrorStatus(w, http.StatusBadRequest, errors.New("invalid body"))
		return
	}
	c.send(w, r, chi.URLParam(r, "id"), in)
}

func (c *CampaignController) send(w http.ResponseWriter, r *http.Request, id string, in *service.CampaignInput) {
	out, err := c.CampaignService.Send(r.Context(), id, in)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if out.Queued {
		status = http.StatusAccepted
	}
	handler.WriteJSON(w, status, out)
}

func (c *CampaignController) ScheduleCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScheduledAt time.Time `json:"scheduled_at"`
	}
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	c.respond(w)(c.CampaignService.Schedule(r.Context(), chi.URLParam(r, "id"), body.ScheduledAt))
}

func (c *CampaignController) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	c.respond(w)(c.CampaignService.Cancel(r.Context(), chi.URLParam(r, "id")))
}

func (c *CampaignController) RestoreCampaign(w http.ResponseWriter, r *http.Request) {
	c.respond(w)(c.CampaignService.Restore(r.Context(), chi.URLParam(r, "id")))
}

func (c *CampaignController) ResetCampaign(w http.ResponseWriter, r *http.Request) {
	c.respond(w)(c.CampaignService.Reset(r.Context(), chi.URLParam(r, "id")))
}

func (c *CampaignController) respond(w http.ResponseWriter) func(*model.Campaign, error) {
	return func(campaign *model.Campaign, err error) {
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		handler.WriteJSON(w, http.StatusOK, campaign)
	}
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := c.CampaignService.RenderPreview(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("partner_id"))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, preview)
}

// RecipientCount answers how many active partners a target selection reaches.
func (c *CampaignController) RecipientCount(w http.ResponseWriter, r *http.Request) {
	var types []model.PartnerType
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		types = append(types, model.PartnerType(t))
	}

	n, err := c.CampaignService.RecipientCount(r.Context(), types)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), page, pageSize, status, search)
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}
