package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/internstack/internstack/internal/app/features/dashboard"
	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	applicationstore "github.com/internstack/internstack/internal/app/store/applications"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	internshipstore "github.com/internstack/internstack/internal/app/store/internships"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/domain/models"
	"github.com/internstack/internstack/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *dashboard.Handler {
	return dashboard.NewHandler(
		uierrors.NewErrorLogger(zap.NewNop()),
		studentstore.New(db),
		companystore.New(db),
		internshipstore.New(db),
		applicationstore.New(db),
		zap.NewNop(),
	)
}

func TestServeStudent_RequiresStudentRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("GET", "/student/dashboard", nil)
	req = auth.WithTestUser(req, testutil.CompanyUser(models.VerificationApproved))
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeStudent(rec, req)
	}()

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeStudent_Anonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("GET", "/student/dashboard", nil)
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeStudent(rec, req)
	}()

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeStudent_RendersForStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	student := f.CreateStudent(ctx, "Dash Student", "dash@example.com")
	company := f.CreateCompany(ctx, "Dash Co", "co@example.com", models.VerificationApproved)
	internship := f.CreateInternship(ctx, "Backend Intern", "Technology", company)
	f.CreateApplication(ctx, student, internship)

	req := httptest.NewRequest("GET", "/student/dashboard", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   student.SubjectID.Hex(),
		Name: student.FullName,
		Role: models.RoleStudents,
	})
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeStudent(rec, req)
	}()

	if rec.Code == http.StatusUnauthorized || rec.Code == http.StatusForbidden {
		t.Errorf("student must pass the gate, got status %d", rec.Code)
	}
}

func TestServeCompany_RequiresCompanyRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("GET", "/company/dashboard", nil)
	req = auth.WithTestUser(req, testutil.StudentUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeCompany(rec, req)
	}()

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeAdmin_RequiresAdminRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req = auth.WithTestUser(req, testutil.StudentUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeAdmin(rec, req)
	}()

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}
