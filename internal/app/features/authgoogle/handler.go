// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	"github.com/internstack/internstack/internal/app/store/oauthstate"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateTTL = 10 * time.Minute

// Handler implements Google sign-in for students. Companies and admins
// authenticate with passwords only.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Identities *identitystore.Store
	Students   *studentstore.Store
	Resolver   *identity.Resolver
	Fetcher    *identity.Fetcher
	States     *oauthstate.Store

	oauthConfig *oauth2.Config
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	identities *identitystore.Store,
	students *studentstore.Store,
	resolver *identity.Resolver,
	fetcher *identity.Fetcher,
	states *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Identities: identities,
		Students:   students,
		Resolver:   resolver,
		Fetcher:    fetcher,
		States:     states,
	}
	if clientID != "" && clientSecret != "" {
		h.oauthConfig = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return h
}

// IsConfigured reports whether Google credentials were provided. When false
// the routes still exist but answer with a not-found page.
func (h *Handler) IsConfigured() bool {
	return h.oauthConfig != nil
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ServeLogin starts the OAuth dance.
// GET /auth/google/login
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.ErrLog.LogNotFound(w, r, "google auth not configured", nil, "Google sign-in is not available.", "/student/login")
		return
	}

	state, err := generateState()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate oauth state", err, "A server error occurred.", "/student/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, "/student/dashboard", time.Now().Add(stateTTL)); err != nil {
		h.ErrLog.LogServerError(w, r, "save oauth state", err, "A server error occurred.", "/student/login")
		return
	}

	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback completes the OAuth dance: validates the one-time state,
// exchanges the code, and signs the student in, creating identity and
// student records on first sign-in.
// GET /auth/google/callback
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.ErrLog.LogNotFound(w, r, "google auth not configured", nil, "Google sign-in is not available.", "/student/login")
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google auth denied", zap.String("error", errParam))
		http.Redirect(w, r, "/student/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	state := r.URL.Query().Get("state")
	returnURL, valid, err := h.States.Validate(ctx, state)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "validate oauth state", err, "A server error occurred.", "/student/login")
		return
	}
	if !valid {
		h.ErrLog.LogBadRequest(w, r, "invalid oauth state", nil, "The sign-in link expired. Please try again.", "/student/login")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.ErrLog.LogBadRequest(w, r, "missing oauth code", nil, "The sign-in response was incomplete.", "/student/login")
		return
	}

	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "exchange oauth code", err, "Google sign-in failed. Please try again.", "/student/login")
		return
	}

	info, err := fetchGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "fetch google userinfo", err, "Google sign-in failed. Please try again.", "/student/login")
		return
	}
	if info.Email == "" {
		h.ErrLog.LogServerError(w, r, "google userinfo missing email", nil, "Google sign-in failed. Please try again.", "/student/login")
		return
	}

	id, err := h.findOrCreateStudent(ctx, info)
	if err != nil {
		if errors.Is(err, errNotAStudent) {
			h.ErrLog.LogForbidden(w, r, "google login for non-student account", nil,
				"This email belongs to a company or admin account. Use the password sign-in instead.", "/")
			return
		}
		h.ErrLog.LogServerError(w, r, "find or create student", err, "A server error occurred.", "/student/login")
		return
	}

	h.Fetcher.Invalidate(id)
	if err := h.SessionMgr.SignIn(w, r, id.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in", err, "A server error occurred.", "/student/login")
		return
	}

	if returnURL == "" {
		returnURL = "/student/dashboard"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

var errNotAStudent = errors.New("subject holds a non-student role")

// findOrCreateStudent maps a verified Google email to a student subject id.
// An email already attached to a company or admin role is refused rather
// than granted a second role.
func (h *Handler) findOrCreateStudent(ctx context.Context, info *googleUserInfo) (primitive.ObjectID, error) {
	id, err := h.Identities.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		if _, err := h.Resolver.ResolveClaimed(ctx, id.ID, models.RoleStudents); err == nil {
			return id.ID, nil
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return id.ID, err
		}
		taken, err := h.Resolver.AnyRoleExists(ctx, id.ID)
		if err != nil {
			return id.ID, err
		}
		if taken {
			return id.ID, errNotAStudent
		}
		// Identity exists with no role record (an earlier signup that
		// failed halfway). Attach the student role now.
		if _, err := h.Students.Create(ctx, models.Student{
			SubjectID: id.ID,
			Email:     info.Email,
			FullName:  info.Name,
		}); err != nil {
			return id.ID, err
		}
		return id.ID, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		id, err := h.Identities.CreateOAuth(ctx, info.Email)
		if err != nil {
			return id.ID, err
		}
		if _, err := h.Students.Create(ctx, models.Student{
			SubjectID: id.ID,
			Email:     info.Email,
			FullName:  info.Name,
		}); err != nil {
			return id.ID, err
		}
		return id.ID, nil
	default:
		return id.ID, err
	}
}

func fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
