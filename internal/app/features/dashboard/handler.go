// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	applicationstore "github.com/internstack/internstack/internal/app/store/applications"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	internshipstore "github.com/internstack/internstack/internal/app/store/internships"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/gates"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"github.com/internstack/internstack/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Log          *zap.Logger
	ErrLog       *uierrors.ErrorLogger
	Students     *studentstore.Store
	Companies    *companystore.Store
	Internships  *internshipstore.Store
	Applications *applicationstore.Store
}

func NewHandler(
	errLog *uierrors.ErrorLogger,
	students *studentstore.Store,
	companies *companystore.Store,
	internships *internshipstore.Store,
	applications *applicationstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		ErrLog:       errLog,
		Students:     students,
		Companies:    companies,
		Internships:  internships,
		Applications: applications,
	}
}

type studentDashboardData struct {
	viewdata.BaseVM
	Applications []models.Application
	StatusCounts map[string]int
}

// ServeStudent renders a student's application overview.
// GET /student/dashboard
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireStudent(w, r, "Student access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	apps, err := h.Applications.ListByStudent(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list student applications", err, "Could not load your applications.", "/")
		return
	}

	counts := make(map[string]int, len(models.ApplicationStatuses))
	for _, a := range apps {
		counts[a.Status]++
	}

	templates.Render(w, r, "dashboard_student", studentDashboardData{
		BaseVM:       viewdata.NewBaseVM(r, "Dashboard", "/"),
		Applications: apps,
		StatusCounts: counts,
	})
}

type companyPosting struct {
	models.Internship
	ApplicantCount int64
}

type companyDashboardData struct {
	viewdata.BaseVM
	Company  models.Company
	Postings []companyPosting
	CanPost  bool
}

// ServeCompany renders a company's postings with applicant counts, plus a
// verification banner while the company is pending or rejected.
// GET /company/dashboard
func (h *Handler) ServeCompany(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCompany(w, r, "Company access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	co, err := h.Companies.GetBySubject(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load company record", err, "Could not load your company profile.", "/")
		return
	}

	ins, err := h.Internships.ListByCompany(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list company internships", err, "Could not load your postings.", "/")
		return
	}

	postings := make([]companyPosting, 0, len(ins))
	for _, in := range ins {
		n, err := h.Applications.CountByInternship(ctx, in.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "count applicants", err, "Could not load your postings.", "/")
			return
		}
		postings = append(postings, companyPosting{Internship: in, ApplicantCount: n})
	}

	templates.Render(w, r, "dashboard_company", companyDashboardData{
		BaseVM:   viewdata.NewBaseVM(r, "Company dashboard", "/"),
		Company:  co,
		Postings: postings,
		CanPost:  co.CanPost(),
	})
}

type adminDashboardData struct {
	viewdata.BaseVM
	StudentCount     int64
	CompanyCount     int64
	InternshipCount  int64
	ApplicationCount int64
	PendingCompanies []models.Company
}

// ServeAdmin renders marketplace totals and the pending verification queue.
// GET /admin/dashboard
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Admin access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := adminDashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Admin dashboard", "/"),
	}

	var err error
	if data.StudentCount, err = h.Students.Count(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "count students", err, "Could not load dashboard.", "/")
		return
	}
	if data.CompanyCount, err = h.Companies.Count(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "count companies", err, "Could not load dashboard.", "/")
		return
	}
	if data.InternshipCount, err = h.Internships.Count(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "count internships", err, "Could not load dashboard.", "/")
		return
	}
	if data.ApplicationCount, err = h.Applications.Count(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "count applications", err, "Could not load dashboard.", "/")
		return
	}
	if data.PendingCompanies, err = h.Companies.ListPending(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "list pending companies", err, "Could not load dashboard.", "/")
		return
	}

	templates.Render(w, r, "dashboard_admin", data)
}
