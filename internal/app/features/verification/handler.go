// internal/app/features/verification/handler.go
package verification

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	"github.com/internstack/internstack/internal/app/system/gates"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin verification queue. Approving a company is what
// unlocks posting for it, so decisions also drop the company's cached
// session data to make the new status visible on its next request.
type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Companies *companystore.Store
	Fetcher   *identity.Fetcher
}

func NewHandler(errLog *uierrors.ErrorLogger, companies *companystore.Store, fetcher *identity.Fetcher, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, ErrLog: errLog, Companies: companies, Fetcher: fetcher}
}

type queueData struct {
	viewdata.BaseVM
	Pending []models.Company
}

// ServeQueue lists companies awaiting verification, oldest first.
// GET /admin/verifications
func (h *Handler) ServeQueue(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Companies.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pending companies", err, "Could not load the queue.", "/admin/dashboard")
		return
	}

	templates.Render(w, r, "verification_queue", queueData{
		BaseVM:  viewdata.NewBaseVM(r, "Verification queue", "/admin/dashboard"),
		Pending: pending,
	})
}

// HandleDecision approves or rejects one company.
// POST /admin/company/{id}/verify
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required.", "/")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed company id", err, "Company not found.", "/admin/dashboard")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/dashboard")
		return
	}

	decision := strings.TrimSpace(r.FormValue("decision"))
	if decision != models.VerificationApproved && decision != models.VerificationRejected {
		h.ErrLog.LogBadRequest(w, r, "invalid verification decision", nil, "Choose approve or reject.", "/admin/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Companies.UpdateVerification(ctx, id, decision); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "company not found", nil, "Company not found.", "/admin/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "update verification status", err, "Could not save the decision.", "/admin/dashboard")
		return
	}

	// The company's next request must see the new status, not the
	// resolution cached at its sign-in.
	h.Fetcher.Invalidate(id)

	h.Log.Info("company verification decided",
		zap.String("company_id", id.Hex()),
		zap.String("decision", decision),
		zap.String("admin_id", res.UserID.Hex()))

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}
