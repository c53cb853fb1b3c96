// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/app/system/viewdata"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the role-scoped login pages. The same handler serves all
// three roles; the claimed role comes from the route, never from the form.
type Handler struct {
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Identities    *identitystore.Store
	Resolver      *identity.Resolver
	Fetcher       *identity.Fetcher
	GoogleEnabled bool
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	identities *identitystore.Store,
	resolver *identity.Resolver,
	fetcher *identity.Fetcher,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Identities:    identities,
		Resolver:      resolver,
		Fetcher:       fetcher,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	Role          string
	RoleLabel     string
	ActionURL     string
	SignupURL     string // "" for admins, who have no self-serve signup
	GoogleEnabled bool   // Google sign-in is offered to students only
}

// roleLabel returns the display name for a role's login page.
func roleLabel(role string) string {
	switch role {
	case models.RoleStudents:
		return "Student"
	case models.RoleCompanies:
		return "Company"
	default:
		return "Admin"
	}
}

func loginPath(role string) string {
	switch role {
	case models.RoleStudents:
		return "/student/login"
	case models.RoleCompanies:
		return "/company/login"
	default:
		return "/admin/login"
	}
}

func signupPath(role string) string {
	switch role {
	case models.RoleStudents:
		return "/student/signup"
	case models.RoleCompanies:
		return "/company/signup"
	default:
		return ""
	}
}

// ServeForm renders the login form for the given role.
// GET /student/login, /company/login, /admin/login
func (h *Handler) ServeForm(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderForm(w, r, role, "", "")
	}
}

// HandlePost processes a login attempt for the given role.
// POST /student/login, /company/login, /admin/login
//
// The credential check and the role check are separate steps: a valid
// password with no record in the claimed role's collection is a role
// mismatch and never falls through to the other collections.
func (h *Handler) HandlePost(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", loginPath(role))
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			h.renderForm(w, r, role, "Please enter your email and password.", email)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		id, err := h.Identities.Authenticate(ctx, email, password)
		if err != nil {
			if errors.Is(err, identitystore.ErrBadCredentials) {
				h.renderForm(w, r, role, "Invalid email or password.", email)
				return
			}
			h.ErrLog.LogServerError(w, r, "authenticate", err, "A server error occurred.", loginPath(role))
			return
		}

		u, err := h.Resolver.ResolveClaimed(ctx, id.ID, role)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Valid credential, wrong door. Clear any existing session
				// so a previous sign-in can't linger behind the error.
				h.Log.Warn("login role mismatch",
					zap.String("subject_id", id.ID.Hex()),
					zap.String("claimed_role", role))
				if err := h.SessionMgr.SignOut(w, r); err != nil {
					h.Log.Error("sign-out after role mismatch", zap.Error(err))
				}
				h.Fetcher.Invalidate(id.ID)
				h.renderForm(w, r, role, "No "+strings.ToLower(roleLabel(role))+" account exists for this email.", email)
				return
			}
			h.ErrLog.LogServerError(w, r, "resolve claimed role", err, "A server error occurred.", loginPath(role))
			return
		}

		// The session changes subject: any in-flight resolution for this
		// subject is now stale.
		h.Fetcher.Invalidate(id.ID)

		if err := h.SessionMgr.SignIn(w, r, id.ID.Hex()); err != nil {
			h.ErrLog.LogServerError(w, r, "sign in", err, "A server error occurred.", loginPath(role))
			return
		}

		home, _ := auth.HomePath(u.Role)
		http.Redirect(w, r, home, http.StatusSeeOther)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, role, errMsg, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, roleLabel(role)+" sign in", "/"),
		Error:         errMsg,
		Email:         email,
		Role:          role,
		RoleLabel:     roleLabel(role),
		ActionURL:     loginPath(role),
		SignupURL:     signupPath(role),
		GoogleEnabled: h.GoogleEnabled && role == models.RoleStudents,
	})
}
