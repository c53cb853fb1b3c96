// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"github.com/internstack/internstack/internal/domain/models"
	"go.uber.org/zap"
)

const minPasswordLen = 8

// Handler owns the student and company signup pages. Admin accounts are
// provisioned out of band and have no signup route.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Identities *identitystore.Store
	Students   *studentstore.Store
	Companies  *companystore.Store
	Resolver   *identity.Resolver
	Fetcher    *identity.Fetcher
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	identities *identitystore.Store,
	students *studentstore.Store,
	companies *companystore.Store,
	resolver *identity.Resolver,
	fetcher *identity.Fetcher,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Identities: identities,
		Students:   students,
		Companies:  companies,
		Resolver:   resolver,
		Fetcher:    fetcher,
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	Name      string
	Role      string
	RoleLabel string
	NameLabel string
	ActionURL string
	LoginURL  string
}

func signupPath(role string) string {
	if role == models.RoleCompanies {
		return "/company/signup"
	}
	return "/student/signup"
}

func loginPath(role string) string {
	if role == models.RoleCompanies {
		return "/company/login"
	}
	return "/student/login"
}

// ServeForm renders the signup form for the given role.
// GET /student/signup, /company/signup
func (h *Handler) ServeForm(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderForm(w, r, role, "", "", "")
	}
}

// HandlePost creates an identity plus the role record for the given role.
// POST /student/signup, /company/signup
//
// A subject may hold exactly one role. The check runs at write time:
// after the identity is created we verify no role record exists for it
// before inserting one, and on any role-record failure the fresh identity
// is deleted so the email is not left claimed by a half-created account.
func (h *Handler) HandlePost(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", signupPath(role))
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		name := strings.TrimSpace(r.FormValue("name"))
		password := r.FormValue("password")

		switch {
		case email == "" || name == "" || password == "":
			h.renderForm(w, r, role, "All fields are required.", email, name)
			return
		case len(password) < minPasswordLen:
			h.renderForm(w, r, role, "Password must be at least 8 characters.", email, name)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
		defer cancel()

		id, err := h.Identities.Create(ctx, email, password)
		if err != nil {
			if errors.Is(err, identitystore.ErrDuplicateEmail) {
				h.renderForm(w, r, role, "An account with this email already exists.", email, name)
				return
			}
			h.ErrLog.LogServerError(w, r, "create identity", err, "A server error occurred.", signupPath(role))
			return
		}

		taken, err := h.Resolver.AnyRoleExists(ctx, id.ID)
		if err != nil {
			h.cleanupIdentity(ctx, id)
			h.ErrLog.LogServerError(w, r, "role existence check", err, "A server error occurred.", signupPath(role))
			return
		}
		if taken {
			// Should be unreachable for a freshly minted subject id; treat
			// it as corruption rather than silently adding a second role.
			h.cleanupIdentity(ctx, id)
			h.Log.Error("new subject already has a role record",
				zap.String("subject_id", id.ID.Hex()))
			h.ErrLog.LogServerError(w, r, "duplicate role record", nil, "A server error occurred.", signupPath(role))
			return
		}

		if err := h.createRoleRecord(ctx, role, id, name, email); err != nil {
			h.cleanupIdentity(ctx, id)
			h.ErrLog.LogServerError(w, r, "create role record", err, "A server error occurred.", signupPath(role))
			return
		}

		h.Fetcher.Invalidate(id.ID)
		if err := h.SessionMgr.SignIn(w, r, id.ID.Hex()); err != nil {
			h.ErrLog.LogServerError(w, r, "sign in", err, "A server error occurred.", loginPath(role))
			return
		}

		home, _ := auth.HomePath(role)
		http.Redirect(w, r, home, http.StatusSeeOther)
	}
}

func (h *Handler) createRoleRecord(ctx context.Context, role string, id models.Identity, name, email string) error {
	if role == models.RoleCompanies {
		_, err := h.Companies.Create(ctx, models.Company{
			SubjectID:   id.ID,
			Email:       email,
			CompanyName: name,
		})
		return err
	}
	_, err := h.Students.Create(ctx, models.Student{
		SubjectID: id.ID,
		Email:     email,
		FullName:  name,
	})
	return err
}

func (h *Handler) cleanupIdentity(ctx context.Context, id models.Identity) {
	if err := h.Identities.Delete(ctx, id.ID); err != nil {
		h.Log.Error("orphan identity cleanup failed",
			zap.String("subject_id", id.ID.Hex()), zap.Error(err))
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, role, errMsg, email, name string) {
	roleLabel, nameLabel := "Student", "Full name"
	if role == models.RoleCompanies {
		roleLabel, nameLabel = "Company", "Company name"
	}
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:    viewdata.NewBaseVM(r, roleLabel+" signup", "/"),
		Error:     errMsg,
		Email:     email,
		Name:      name,
		Role:      role,
		RoleLabel: roleLabel,
		NameLabel: nameLabel,
		ActionURL: signupPath(role),
		LoginURL:  loginPath(role),
	})
}
