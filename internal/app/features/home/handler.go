package home

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler serves the public landing page with the role selection cards.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot renders the role selection page. A signed-in user is sent
// straight to their role's home instead.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		if home, known := auth.HomePath(u.Role); known {
			http.Redirect(w, r, home, http.StatusSeeOther)
			return
		}
	}

	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}

	templates.Render(w, r, "home", data)
}
