// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/internstack/internstack/internal/app/system/auth"
)

// StudentRoutes is mounted at /student/dashboard.
func StudentRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeStudent)
	return r
}

// CompanyRoutes is mounted at /company/dashboard.
func CompanyRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeCompany)
	return r
}

// AdminRoutes is mounted at /admin/dashboard.
func AdminRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServeAdmin)
	return r
}
