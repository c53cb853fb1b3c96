// internal/app/features/applications/handler.go
package applications

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	applicationstore "github.com/internstack/internstack/internal/app/store/applications"
	internshipstore "github.com/internstack/internstack/internal/app/store/internships"
	"github.com/internstack/internstack/internal/app/system/gates"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log          *zap.Logger
	ErrLog       *uierrors.ErrorLogger
	Internships  *internshipstore.Store
	Applications *applicationstore.Store
}

func NewHandler(
	errLog *uierrors.ErrorLogger,
	internships *internshipstore.Store,
	applications *applicationstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		ErrLog:       errLog,
		Internships:  internships,
		Applications: applications,
	}
}

type historyData struct {
	viewdata.BaseVM
	Applications []models.Application
}

// ServeHistory shows a student's full application history, newest first.
// GET /my-applications
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireStudent(w, r, "Student access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	apps, err := h.Applications.ListByStudent(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list student applications", err, "Could not load your applications.", "/student/dashboard")
		return
	}

	templates.Render(w, r, "application_history", historyData{
		BaseVM:       viewdata.NewBaseVM(r, "My applications", "/student/dashboard"),
		Applications: apps,
	})
}

type applicantsData struct {
	viewdata.BaseVM
	Internship models.Internship
	Applicants []models.Application
	Statuses   []string
}

// ServeApplicants shows the applicant table for one of the company's own
// postings.
// GET /company/internship/{id}/applicants
func (h *Handler) ServeApplicants(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCompany(w, r, "Company access required.", "/")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed internship id", err, "Posting not found.", "/company/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	in, err := h.Internships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "internship not found", nil, "Posting not found.", "/company/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "load internship", err, "Could not load applicants.", "/company/dashboard")
		return
	}
	if in.CompanyID != res.UserID {
		h.ErrLog.LogForbidden(w, r, "applicants for another company's posting", nil,
			"You can only review applicants to your own postings.", "/company/dashboard")
		return
	}

	apps, err := h.Applications.ListByInternship(ctx, in.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list applicants", err, "Could not load applicants.", "/company/dashboard")
		return
	}

	templates.Render(w, r, "applicant_list", applicantsData{
		BaseVM:     viewdata.NewBaseVM(r, "Applicants: "+in.Title, "/company/dashboard"),
		Internship: in,
		Applicants: apps,
		Statuses:   models.ApplicationStatuses,
	})
}

// HandleStatusUpdate moves one application through the review workflow.
// The store scopes the write to the owning company, so a forged id from
// another company matches nothing.
// POST /company/application/{id}/status
func (h *Handler) HandleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCompany(w, r, "Company access required.", "/")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed application id", err, "Application not found.", "/company/dashboard")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/company/dashboard")
		return
	}
	status := strings.TrimSpace(r.FormValue("status"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Applications.UpdateStatus(ctx, id, res.UserID, status); err != nil {
		switch {
		case errors.Is(err, applicationstore.ErrInvalidStatus):
			h.ErrLog.LogBadRequest(w, r, "invalid status value", err, "Choose a status from the list.", "/company/dashboard")
		case errors.Is(err, mongo.ErrNoDocuments):
			h.ErrLog.LogNotFound(w, r, "status update matched nothing", nil, "Application not found.", "/company/dashboard")
		default:
			h.ErrLog.LogServerError(w, r, "update application status", err, "Could not update the application.", "/company/dashboard")
		}
		return
	}

	// Send the reviewer back to the applicant table they came from.
	app, err := h.Applications.GetByID(ctx, id)
	if err != nil {
		http.Redirect(w, r, "/company/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/company/internship/"+app.InternshipID.Hex()+"/applicants", http.StatusSeeOther)
}
