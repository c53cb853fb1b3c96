package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/internstack/internstack/internal/app/features/authgoogle"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	"github.com/internstack/internstack/internal/app/store/oauthstate"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database, clientID, clientSecret string) *authgoogle.Handler {
	t.Helper()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	resolver := identity.NewResolver(db, zap.NewNop())
	return authgoogle.NewHandler(
		sm,
		uierrors.NewErrorLogger(zap.NewNop()),
		identitystore.New(db),
		studentstore.New(db),
		resolver,
		identity.NewFetcher(resolver, zap.NewNop()),
		oauthstate.New(db),
		clientID, clientSecret, "https://internstack.example",
		zap.NewNop(),
	)
}

func TestIsConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)

	if newHandler(t, db, "", "").IsConfigured() {
		t.Error("handler without credentials must report unconfigured")
	}
	if !newHandler(t, db, "client-id", "client-secret").IsConfigured() {
		t.Error("handler with credentials must report configured")
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/login", nil)
	rec := httptest.NewRecorder()

	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://accounts.google.com/") {
		t.Errorf("Location: got %q, want a Google consent URL", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Error("consent URL must carry a state parameter")
	}

	// The state in the URL must be the one persisted for the callback.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := http.NewRequest("GET", loc, nil)
	if err != nil {
		t.Fatalf("parse consent URL: %v", err)
	}
	state := u.URL.Query().Get("state")
	returnURL, valid, err := oauthstate.New(db).Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Fatal("issued state must validate once")
	}
	if returnURL != "/student/dashboard" {
		t.Errorf("returnURL: got %q, want /student/dashboard", returnURL)
	}

	// One-time use: a second validation of the same state must fail.
	if _, valid, _ := oauthstate.New(db).Validate(ctx, state); valid {
		t.Error("state must be single-use")
	}
}

func TestServeCallback_InvalidState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?state=forged&code=abc", nil)
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeCallback(rec, req)
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("forged state must not complete sign-in")
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/student/login" {
		t.Errorf("Location: got %q, want /student/login", loc)
	}
}

func TestServeLogin_Unconfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, "", "")

	req := httptest.NewRequest("GET", "/auth/google/login", nil)
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeLogin(rec, req)
	}()

	if rec.Code == http.StatusTemporaryRedirect {
		t.Error("unconfigured handler must not redirect to Google")
	}
}
