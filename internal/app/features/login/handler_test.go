package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	"github.com/internstack/internstack/internal/app/features/login"
	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/domain/models"
	"github.com/internstack/internstack/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database) *login.Handler {
	t.Helper()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	resolver := identity.NewResolver(db, zap.NewNop())
	fetcher := identity.NewFetcher(resolver, zap.NewNop())
	return login.NewHandler(
		sm,
		uierrors.NewErrorLogger(zap.NewNop()),
		identitystore.New(db),
		resolver,
		fetcher,
		false,
		zap.NewNop(),
	)
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// seedStudent creates a credentialed identity plus the matching student
// role record and returns the credentials.
func seedStudent(t *testing.T, db *mongo.Database) (email, password string) {
	t.Helper()

	ctx, cancel := testutil.TestContext()
	defer cancel()

	email = "login-student@example.com"
	password = "correct horse battery staple"

	id, err := identitystore.New(db).Create(ctx, email, password)
	if err != nil {
		t.Fatalf("Create identity failed: %v", err)
	}
	_, err = studentstore.New(db).Create(ctx, models.Student{
		SubjectID: id.ID,
		Email:     email,
		FullName:  "Login Student",
	})
	if err != nil {
		t.Fatalf("Create student failed: %v", err)
	}
	return email, password
}

func TestHandlePost_StudentSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	email, password := seedStudent(t, db)

	req := postForm("/student/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	rec := httptest.NewRecorder()

	h.HandlePost(models.RoleStudents)(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/student/dashboard" {
		t.Errorf("Location: got %q, want /student/dashboard", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie on successful login")
	}
}

func TestHandlePost_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	email, _ := seedStudent(t, db)

	req := postForm("/student/login", url.Values{
		"email":    {email},
		"password": {"not the password"},
	})
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandlePost(models.RoleStudents)(rec, req)
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("wrong password must not redirect")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("wrong password must not set a session cookie")
	}
}

func TestHandlePost_RoleMismatchDoesNotFallThrough(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	email, password := seedStudent(t, db)

	// Valid student credential presented at the company door.
	req := postForm("/company/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandlePost(models.RoleCompanies)(rec, req)
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("role mismatch must not redirect to a dashboard")
	}
}

func TestHandlePost_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := postForm("/student/login", url.Values{"email": {"x@example.com"}})
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandlePost(models.RoleStudents)(rec, req)
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("missing password must not redirect")
	}
}
