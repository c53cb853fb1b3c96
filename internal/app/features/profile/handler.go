// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/gates"
	"github.com/internstack/internstack/internal/app/system/htmlsanitize"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// maxResumeSize caps resume uploads at 5 MB.
const maxResumeSize = 5 << 20

type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Students  *studentstore.Store
	Companies *companystore.Store
	Storage   storage.Store
}

func NewHandler(
	errLog *uierrors.ErrorLogger,
	students *studentstore.Store,
	companies *companystore.Store,
	store storage.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		Students:  students,
		Companies: companies,
		Storage:   store,
	}
}

type studentProfileData struct {
	viewdata.BaseVM
	Error     string
	Notice    string
	FullName  string
	Education string
	Skills    string
	LinkedIn  string
	GitHub    string
	ResumeURL string
}

// ServeStudent renders the student profile form.
// GET /student/profile
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireStudent(w, r, "Student access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Students.GetBySubject(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student record", err, "Could not load your profile.", "/student/dashboard")
		return
	}

	templates.Render(w, r, "profile_student", studentProfileData{
		BaseVM:    viewdata.NewBaseVM(r, "My profile", "/student/dashboard"),
		FullName:  st.FullName,
		Education: st.Education,
		Skills:    st.Skills,
		LinkedIn:  st.LinkedIn,
		GitHub:    st.GitHub,
		ResumeURL: st.ResumeURL,
	})
}

// HandleStudent saves the student profile, including an optional resume
// upload. Free-text fields are stored as plain text.
// POST /student/profile
func (h *Handler) HandleStudent(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireStudent(w, r, "Student access required.", "/")
	if !res.OK {
		return
	}

	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form data or file too large.", "/student/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	st, err := h.Students.GetBySubject(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student record", err, "Could not save your profile.", "/student/dashboard")
		return
	}

	st.FullName = strings.TrimSpace(r.FormValue("full_name"))
	st.Education = htmlsanitize.Plain(r.FormValue("education"))
	st.Skills = htmlsanitize.Plain(r.FormValue("skills"))
	st.LinkedIn = strings.TrimSpace(r.FormValue("linkedin"))
	st.GitHub = strings.TrimSpace(r.FormValue("github"))

	if err := h.Students.UpdateProfile(ctx, res.UserID, st); err != nil {
		h.ErrLog.LogServerError(w, r, "update student profile", err, "Could not save your profile.", "/student/dashboard")
		return
	}

	file, header, err := r.FormFile("resume")
	switch err {
	case nil:
		defer file.Close()
		url, upErr := h.uploadResume(ctx, res.UserID.Hex(), header.Filename, file)
		if upErr != nil {
			h.ErrLog.LogServerError(w, r, "upload resume", upErr, "Profile saved, but the resume upload failed.", "/student/profile")
			return
		}
		if upErr := h.Students.SetResumeURL(ctx, res.UserID, url); upErr != nil {
			h.ErrLog.LogServerError(w, r, "save resume url", upErr, "Profile saved, but the resume upload failed.", "/student/profile")
			return
		}
	case http.ErrMissingFile:
		// No new resume, keep the old one.
	default:
		h.ErrLog.LogBadRequest(w, r, "read resume upload", err, "Could not read the resume file.", "/student/profile")
		return
	}

	http.Redirect(w, r, "/student/profile", http.StatusSeeOther)
}

// uploadResume stores the file under a per-student unique path and returns
// the public URL.
func (h *Handler) uploadResume(ctx context.Context, subjectHex, filename string, file io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" && ext != ".doc" && ext != ".docx" {
		return "", fmt.Errorf("unsupported resume type %q", ext)
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("resumes/%04d/%02d/%s-%s%s",
		now.Year(), now.Month(), subjectHex, uuid.New().String()[:8], ext)

	contentType := "application/octet-stream"
	if ext == ".pdf" {
		contentType = "application/pdf"
	}
	if err := h.Storage.Put(ctx, path, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("store resume: %w", err)
	}
	return h.Storage.URL(path), nil
}

type companyProfileData struct {
	viewdata.BaseVM
	Error       string
	CompanyName string
	Website     string
	Description string
}

// ServeCompany renders the company profile form.
// GET /company/profile
func (h *Handler) ServeCompany(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCompany(w, r, "Company access required.", "/")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	co, err := h.Companies.GetBySubject(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load company record", err, "Could not load your profile.", "/company/dashboard")
		return
	}

	templates.Render(w, r, "profile_company", companyProfileData{
		BaseVM:      viewdata.NewBaseVM(r, "Company profile", "/company/dashboard"),
		CompanyName: co.CompanyName,
		Website:     co.Website,
		Description: co.Description,
	})
}

// HandleCompany saves the company profile. Verification status is not
// touchable from here; only admins change it.
// POST /company/profile
func (h *Handler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCompany(w, r, "Company access required.", "/")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/company/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	co, err := h.Companies.GetBySubject(ctx, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load company record", err, "Could not save your profile.", "/company/dashboard")
		return
	}

	co.CompanyName = strings.TrimSpace(r.FormValue("company_name"))
	co.Website = strings.TrimSpace(r.FormValue("website"))
	co.Description = htmlsanitize.Plain(r.FormValue("description"))

	if err := h.Companies.UpdateProfile(ctx, res.UserID, co); err != nil {
		h.ErrLog.LogServerError(w, r, "update company profile", err, "Could not save your profile.", "/company/dashboard")
		return
	}

	http.Redirect(w, r, "/company/profile", http.StatusSeeOther)
}
