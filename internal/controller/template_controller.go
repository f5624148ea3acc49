// internal/controller/template_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type TemplateController struct {
	TemplateService *service.TemplateService
}

func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var body service.TemplateInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	body.CreatedBy = createdBy(r)

	t, err := c.TemplateService.Create(r.Context(), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, t)
}

func (c *TemplateController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var body service.TemplateInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}

	t, err := c.TemplateService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, t)
}

func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := c.TemplateService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, t)
}

func (c *TemplateController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.TemplateService.List(r.Context())
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": templates})
}

func (c *TemplateController) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := c.TemplateService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handler.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *TemplateController) DuplicateTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := c.TemplateService.Duplicate(r.Context(), chi.URLParam(r, "id"), createdBy(r))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, t)
}

func (c *TemplateController) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	p, err := c.TemplateService.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}
