// Package authz provides request-context role helpers for handlers that sit
// behind the session middleware.
package authz

import (
	"net/http"
	"strings"

	"github.com/internstack/internstack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, subject ObjectID, and
// a found flag. If no user is present or the subject id is malformed it
// returns "visitor", "", NilObjectID, false, so ok=true always means a
// valid authenticated user with a parseable subject id.
func UserCtx(r *http.Request) (role string, name string, subjectID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed subject id in session; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, oid, true
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "students"
}

// IsCompany reports whether the current request's user is a company.
func IsCompany(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "companies"
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admins"
}

// CanPostInternships reports whether the current user is an approved
// company. Pending and rejected companies see their dashboard but no
// posting controls.
func CanPostInternships(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.CanPostInternships()
}
