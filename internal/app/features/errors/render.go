package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/internstack/internstack/internal/app/system/auth"
)

// RenderUnauthorized shows a "sign in required" page with a 401 status.
// If backURL is empty it defaults to the role selection page.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	render(w, r, http.StatusUnauthorized, pageData{
		Title:   "Sign in required",
		Message: "Please sign in to continue.",
		BackURL: backURL,
	})
}

// RenderForbidden shows an access denied page with a 403 status.
// If backURL is empty it resolves a safe back URL with "/" as fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusForbidden, pageData{
		Title:   "Access denied",
		Message: msg,
		BackURL: backURL,
	})
}

// RenderNotFound shows a not found page with a 404 status.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusNotFound, pageData{
		Title:   "Not found",
		Message: msg,
		BackURL: backURL,
	})
}

// RenderServerError shows a generic failure page with a 500 status.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusInternalServerError, pageData{
		Title:   "Something went wrong",
		Message: msg,
		BackURL: backURL,
	})
}

// RenderBadRequest shows an invalid request page with a 400 status.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusBadRequest, pageData{
		Title:   "Invalid request",
		Message: msg,
		BackURL: backURL,
	})
}

func render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		data.IsLoggedIn = true
		data.Role = u.Role
		data.UserName = u.Name
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
