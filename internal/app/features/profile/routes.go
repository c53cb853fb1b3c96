// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/internstack/internstack/internal/app/system/auth"
)

// StudentRoutes is mounted at /student/profile.
func StudentRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeStudent)
	r.Post("/", h.HandleStudent)
	return r
}

// CompanyRoutes is mounted at /company/profile.
func CompanyRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeCompany)
	r.Post("/", h.HandleCompany)
	return r
}
