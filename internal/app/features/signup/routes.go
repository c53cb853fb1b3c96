// internal/app/features/signup/routes.go
package signup

import "github.com/go-chi/chi/v5"

// Routes returns the signup routes for a single role. The caller mounts the
// returned router at the role's signup path (for example /student/signup).
func Routes(h *Handler, role string) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm(role))
	r.Post("/", h.HandlePost(role))
	return r
}
