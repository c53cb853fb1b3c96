// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering appropriate error
// pages when checks fail.
//
// Route groups already use auth.RequireSignedIn and auth.RequireRole for
// coarse access control; handlers behind those don't need gates and should
// read authz.UserCtx directly. Gates are for handlers on mixed-access
// routes that need their own role check, with an error page instead of a
// redirect when the check fails.
package gates

import (
	"net/http"

	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	"github.com/internstack/internstack/internal/app/system/authz"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated. If not, it renders an
// unauthorized error and returns OK=false. loginURL says where the error
// page should send the user to sign in.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}

// RequireStudent ensures the user is authenticated with the student role.
func RequireStudent(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, fallbackURL, models.RoleStudents)
}

// RequireCompany ensures the user is authenticated with the company role.
// Verification state is not checked here; handlers that publish internships
// check CanPostInternships separately.
func RequireCompany(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, fallbackURL, models.RoleCompanies)
}

// RequireAdmin ensures the user is authenticated with the admin role.
func RequireAdmin(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, fallbackURL, models.RoleAdmins)
}

// RequireAnyRole ensures the user is authenticated and has one of the
// allowed roles. If not authenticated, it renders an unauthorized error; if
// authenticated with a role outside the list, a forbidden error.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string, allowedRoles ...string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/")
		return Result{OK: false}
	}

	for _, allowed := range allowedRoles {
		if role == allowed {
			return Result{Role: role, Name: name, UserID: uid, OK: true}
		}
	}

	uierrors.RenderForbidden(w, r, forbiddenMsg, fallbackURL)
	return Result{OK: false}
}
