// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes returns the login routes for a single role. The caller mounts the
// returned router at the role's login path (for example /student/login).
func Routes(h *Handler, role string) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm(role))
	r.Post("/", h.HandlePost(role))
	return r
}
