// internal/app/features/applications/routes.go
package applications

import (
	"github.com/go-chi/chi/v5"
	"github.com/internstack/internstack/internal/app/system/auth"
)

// StudentRoutes is mounted at /my-applications.
func StudentRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeHistory)
	return r
}

// ApplicantRoutes is mounted at /company/internship.
func ApplicantRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/{id}/applicants", h.ServeApplicants)
	return r
}

// StatusRoutes is mounted at /company/application.
func StatusRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Post("/{id}/status", h.HandleStatusUpdate)
	return r
}
