// internal/controller/dashboard_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

// GetStats serves the counters shown on the dashboard home page.
func (c *DashboardController) GetStats(w http.ResponseWriter, r *http.Request) {
	s, err := c.DashboardService.Stats(r.Context())
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, s)
}
