// internal/app/features/internships/routes.go
package internships

import (
	"github.com/go-chi/chi/v5"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/domain/models"
)

// ListRoutes is mounted at /internships. The marketplace is shared by all
// three roles but is not public; anonymous visitors go back to the entry
// page.
func ListRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Use(sessionMgr.RequireRole(models.RoleStudents, models.RoleCompanies, models.RoleAdmins))
	r.Get("/", h.ServeList)
	return r
}

// DetailRoutes is mounted at /internship. Viewing needs a session like the
// list does; applying and deleting are further checked per role in the
// handlers.
func DetailRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Use(sessionMgr.RequireRole(models.RoleStudents, models.RoleCompanies, models.RoleAdmins))
	r.Get("/{id}", h.ServeDetail)
	r.Post("/{id}/apply", h.HandleApply)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}

// PostRoutes is mounted at /company/post-internship.
func PostRoutes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.ServePostForm)
	r.Post("/", h.HandlePostForm)
	return r
}
