// Package viewdata holds the view model shared by every rendered page.
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/authz"
)

// SiteName is the display name used in page chrome.
const SiteName = "InternStack"

// BaseVM contains common fields for all view models. Embed it in
// feature-specific view models:
//
//	type pageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields
//	}
type BaseVM struct {
	SiteName string

	// User context from the session middleware.
	IsLoggedIn bool
	Role       string
	UserName   string

	// Company verification state, "" for other roles. Templates use it to
	// show the pending/rejected banner.
	VerificationStatus string

	// Page context.
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
}

// NewBaseVM creates a populated BaseVM for a page. backDefault is used for
// the back link when the request carries no better origin.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if u, ok := auth.CurrentUser(r); ok && u != nil {
		vm.VerificationStatus = u.VerificationStatus
	}

	return vm
}
