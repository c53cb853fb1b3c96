// Package auth owns cookie sessions and the request-level access gate.
//
// A session stores only the authenticated flag and the subject id. The
// current user is fetched fresh on every request through a UserFetcher
// (the identity resolver), so role changes and deleted role records take
// effect immediately instead of living in the cookie until it expires.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	subjectIDKey = "subject_id"
)

// SessionUser is the per-request view of the resolved user injected into
// r.Context(). VerificationStatus is set only for the companies role.
type SessionUser struct {
	ID                 string // subject id (hex ObjectID)
	Name               string
	Email              string
	Role               string // students | companies | admins
	VerificationStatus string
}

// CanPostInternships reports whether this user may create postings.
func (u *SessionUser) CanPostInternships() bool {
	return u.Role == "companies" && u.VerificationStatus == "approved"
}

// UserFetcher resolves a subject id to the current SessionUser.
//
// A (nil, nil) return means the subject matched no role collection: the
// session middleware treats this as an inconsistent state and forces
// sign-out. An error is a store fault; policy is fail open to signed-out,
// never retry.
type UserFetcher interface {
	FetchUser(ctx context.Context, subjectID string) (*SessionUser, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user injected by LoadSessionUser and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user into the request context, bypassing the
// session middleware. Only for tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager wraps the gorilla cookie store with the app's session
// policy and the gate middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure with SameSite=Lax; in dev
// over plain http they are accepted without the Secure flag.
func NewSessionManager(key, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if key == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{
		store: store,
		name:  name,
		log:   logger,
	}, nil
}

// Store exposes the underlying cookie store (logout needs its options to
// build a matching deletion cookie).
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// GetSession returns the request's session, creating a fresh one if the
// cookie is absent or fails to decode.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SetUserFetcher installs the fetcher used by LoadSessionUser. Call once at
// startup before the handler tree is built.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// SignIn marks the session authenticated for the given subject.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, subjectID string) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		// Decode failure on a stale cookie; proceed with the fresh session.
		sm.log.Warn("session decode failed during sign-in, using fresh session", zap.Error(err))
	}
	sess.Values[isAuthKey] = true
	sess.Values[subjectIDKey] = subjectID
	return sess.Save(r, w)
}

// SignOut destroys the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during sign-out", zap.Error(err))
	}
	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the resolved user into context if the session is
// authenticated. A subject that no longer matches any role collection is an
// inconsistent state: the session is destroyed (forced sign-out) and the
// request continues unauthenticated.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.GetSession(r)

		isAuth, _ := sess.Values[isAuthKey].(bool)
		subjectID, _ := sess.Values[subjectIDKey].(string)
		if !isAuth || subjectID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := sm.fetcher.FetchUser(r.Context(), subjectID)
		if err != nil {
			// Store fault: fail open to signed-out for this request, keep
			// the cookie so a healthy store resolves the next one.
			sm.log.Error("user fetch failed, treating request as signed out",
				zap.String("subject_id", subjectID),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if u == nil {
			sm.log.Warn("authenticated subject matched no role collection, forcing sign-out",
				zap.String("subject_id", subjectID))
			if err := sm.SignOut(w, r); err != nil {
				sm.log.Error("forced sign-out failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn redirects anonymous requests to the public entry page.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirect(w, r, "/")
	})
}

// RequireRole gates a route group to the allowed roles.
//
// Not signed in: redirect to the public entry page. Signed in with a
// different known role: redirect to that role's own home. An unknown role
// means the session is inconsistent with the data model; it is logged and
// handled as a forced sign-out rather than silently granted a fallback.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirect(w, r, "/")
				return
			}

			role := strings.ToLower(u.Role)
			if _, has := set[role]; has {
				next.ServeHTTP(w, r)
				return
			}

			home, known := HomePath(role)
			if !known {
				sm.log.Error("user has unrecognized role, forcing sign-out",
					zap.String("subject_id", u.ID),
					zap.String("role", u.Role))
				if err := sm.SignOut(w, r); err != nil {
					sm.log.Error("forced sign-out failed", zap.Error(err))
				}
				redirect(w, r, "/")
				return
			}
			redirect(w, r, home)
		})
	}
}

// HomePath returns the dashboard path for a role and whether the role is
// recognized.
func HomePath(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "students":
		return "/student/dashboard", true
	case "companies":
		return "/company/dashboard", true
	case "admins":
		return "/admin/dashboard", true
	}
	return "", false
}

// redirect handles both HTMX and plain browser navigation.
func redirect(w http.ResponseWriter, r *http.Request, dest string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
