// internal/app/features/verification/routes.go
package verification

import (
	"github.com/go-chi/chi/v5"
	"github.com/internstack/internstack/internal/app/system/auth"
)

// QueueRoutes is mounted at /admin/verifications.
func QueueRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeQueue)
	return r
}

// DecisionRoutes is mounted at /admin/company.
func DecisionRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Post("/{id}/verify", h.HandleDecision)
	return r
}
