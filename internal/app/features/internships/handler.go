// internal/app/features/internships/handler.go
package internships

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	applicationstore "github.com/internstack/internstack/internal/app/store/applications"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	internshipstore "github.com/internstack/internstack/internal/app/store/internships"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/authz"
	"github.com/internstack/internstack/internal/app/system/gates"
	"github.com/internstack/internstack/internal/app/system/htmlsanitize"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listLimit = 100

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

type listData struct {
	viewdata.BaseVM
	Internships []models.Internship
	Search      string
	Category    string
	Categories  []string
}

// ServeList shows the browse page with search and category filters.
// GET /internships
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "All" {
		category = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ins, err := h.Internships.List(ctx, search, category, listLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list internships", err, "Could not load internships.", "/")
		return
	}

	templates.Render(w, r, "internship_list", listData{
		BaseVM:      viewdata.NewBaseVM(r, "Internships", "/"),
		Internships: ins,
		Search:      search,
		Category:    category,
		Categories:  models.InternshipCategories,
	})
}

type detailData struct {
	viewdata.BaseVM
	Internship models.Internship
	IsStudent  bool
	HasApplied bool
	IsOwner    bool
	Applied    bool // just applied, show confirmation
}

// ServeDetail shows one posting. Students see an apply button or their
// applied state; the owning company sees a delete control.
// GET /internship/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed internship id", err, "Internship not found.", "/internships")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	in, err := h.Internships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "internship not found", nil, "Internship not found.", "/internships")
			return
		}
		h.ErrLog.LogServerError(w, r, "load internship", err, "Could not load this internship.", "/internships")
		return
	}

	data := detailData{
		BaseVM:     viewdata.NewBaseVM(r, in.Title, "/internships"),
		Internship: in,
		Applied:    r.URL.Query().Get("applied") == "1",
	}

	role, _, uid, ok := authz.UserCtx(r)
	if ok {
		switch role {
		case models.RoleStudents:
			data.IsStudent = true
			applied, err := h.Applications.HasApplied(ctx, uid, in.ID)
			if err != nil {
				h.ErrLog.LogServerError(w, r, "check applied state", err, "Could not load this internship.", "/internships")
				return
			}
			data.HasApplied = applied
		case models.RoleCompanies:
			data.IsOwner = uid == in.CompanyID
		}
	}

	templates.Render(w, r, "internship_detail", data)
}

// HandleApply records a student's application to a posting. The unique
// (student_id, internship_id) index makes a repeat apply a no-op error
// rather than a second row, including under concurrent submits.
// POST /internship/{id}/apply
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireStudent(w, r, "Only students can apply to internships.", "/internships")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed internship id", err, "Internship not found.", "/internships")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	in, err := h.Internships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "internship not found", nil, "Internship not found.", "/internships")
			return
		}
		h.ErrLog.LogServerError(w, r, "load internship", err, "Could not apply.", "/internships")
		return
	}

	st, err := h.Students.GetBySubject(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student record", err, "Could not apply.", "/internships")
		return
	}

	_, err = h.Applications.Create(ctx, models.Application{
		InternshipID:    in.ID,
		InternshipTitle: in.Title,
		StudentID:       st.SubjectID,
		StudentName:     st.FullName,
		StudentEmail:    st.Email,
		CompanyID:       in.CompanyID,
		CompanyName:     in.CompanyName,
	})
	if err != nil {
		if errors.Is(err, applicationstore.ErrAlreadyApplied) {
			// Repeat submit, including a double-click race. Land on the
			// detail page which shows the applied state.
			http.Redirect(w, r, "/internship/"+in.ID.Hex(), http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "create application", err, "Could not apply.", "/internships")
		return
	}

	http.Redirect(w, r, "/internship/"+in.ID.Hex()+"?applied=1", http.StatusSeeOther)
}

type postFormData struct {
	viewdata.BaseVM
	Error      string
	Title      string
	Category   string
	Desc       string
	Categories []string
}

// ServePostForm renders the posting form for approved companies.
// GET /company/post-internship
func (h *Handler) ServePostForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireApprovedCompany(w, r) {
		return
	}
	h.renderPostForm(w, r, "", "", "", "")
}

// HandlePostForm creates a posting for an approved company.
// POST /company/post-internship
func (h *Handler) HandlePostForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireApprovedCompany(w, r) {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/company/post-internship")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.TrimSpace(r.FormValue("category"))
	desc := htmlsanitize.Plain(r.FormValue("description"))

	switch {
	case title == "" || category == "" || desc == "":
		h.renderPostForm(w, r, "All fields are required.", title, category, desc)
		return
	case !models.IsValidCategory(category):
		h.renderPostForm(w, r, "Choose a category from the list.", title, "", desc)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	co, err := h.Companies.GetBySubject(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load company record", err, "Could not create the posting.", "/company/dashboard")
		return
	}
	// The session snapshot said approved; the record is the source of
	// truth in case verification was revoked since sign-in.
	if !co.CanPost() {
		h.ErrLog.LogForbidden(w, r, "unverified company posting", nil,
			"Your company must be verified before posting internships.", "/company/dashboard")
		return
	}

	in, err := h.Internships.Create(ctx, models.Internship{
		Title:       title,
		Category:    category,
		Description: desc,
		CompanyID:   co.SubjectID,
		CompanyName: co.CompanyName,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create internship", err, "Could not create the posting.", "/company/dashboard")
		return
	}

	http.Redirect(w, r, "/internship/"+in.ID.Hex(), http.StatusSeeOther)
}

// HandleDelete removes a posting. The store scopes the delete to the
// owning company, so another company's id simply matches nothing.
// POST /internship/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCompany(w, r, "Only companies can manage postings.", "/internships")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed internship id", err, "Internship not found.", "/company/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Internships.Delete(ctx, id, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete internship", err, "Could not delete the posting.", "/company/dashboard")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete matched nothing", nil, "Posting not found.", "/company/dashboard")
		return
	}

	http.Redirect(w, r, "/company/dashboard", http.StatusSeeOther)
}

func (h *Handler) requireApprovedCompany(w http.ResponseWriter, r *http.Request) bool {
	res := gates.RequireCompany(w, r, "Only companies can post internships.", "/internships")
	if !res.OK {
		return false
	}
	if !authz.CanPostInternships(r) {
		h.ErrLog.LogForbidden(w, r, "unverified company posting", nil,
			"Your company must be verified before posting internships.", "/company/dashboard")
		return false
	}
	return true
}

func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, errMsg, title, category, desc string) {
	templates.Render(w, r, "internship_post", postFormData{
		BaseVM:     viewdata.NewBaseVM(r, "Post an internship", "/company/dashboard"),
		Error:      errMsg,
		Title:      title,
		Category:   category,
		Desc:       desc,
		Categories: models.InternshipCategories,
	})
}
