// internal/controller/partner_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type PartnerController struct {
	PartnerService *service.PartnerService
}

func (c *PartnerController) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var body service.PartnerInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	p, err := c.PartnerService.Create(r.Context(), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, p)
}

// Register is the public sign-up form. It never needs a token.
func (c *PartnerController) Register(w http.ResponseWriter, r *http.Request) {
	var body service.PartnerInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	p, err := c.PartnerService.Register(r.Context(), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, p)
}

func (c *PartnerController) GetPartner(w http.ResponseWriter, r *http.Request) {
	p, err := c.PartnerService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}

func (c *PartnerController) ListPartners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	f := repository.PartnerFilter{
		Type:   model.PartnerType(q.Get("type")),
		Search: q.Get("search"),
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err == nil {
			f.Active = &active
		}
	}

	partners, pagination, err := c.PartnerService.List(r.Context(), f, page, pageSize)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       partners,
		"pagination": pagination,
	})
}

func (c *PartnerController) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	var body service.PartnerInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	p, err := c.PartnerService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}

func (c *PartnerController) SetActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive bool `json:"is_active"`
	}
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	if err := c.PartnerService.SetActive(r.Context(), chi.URLParam(r, "id"), body.IsActive); err != nil {
		handler.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *PartnerController) DeletePartner(w http.ResponseWriter, r *http.Request) {
	if err := c.PartnerService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handler.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
