// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Fetcher    *identity.Fetcher
}

func NewHandler(sessionMgr *auth.SessionManager, fetcher *identity.Fetcher, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, SessionMgr: sessionMgr, Fetcher: fetcher}
}

// Serve clears the session and sends the visitor back to the landing page.
// POST /logout
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	// Mark the subject's in-flight resolutions stale so none of them can
	// install a result that predates the sign-out.
	if u, ok := auth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			h.Fetcher.Invalidate(oid)
		}
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign out failed", zap.Error(err))
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
