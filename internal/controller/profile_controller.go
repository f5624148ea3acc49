// internal/controller/profile_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := c.ProfileService.Get(r.Context())
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}

func (c *ProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body service.ProfileInput
	if !handler.DecodeJSON(w, r, &body) {
		return
	}
	p, err := c.ProfileService.Update(r.Context(), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}
