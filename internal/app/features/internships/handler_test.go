package internships_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/internstack/internstack/internal/app/features/errors"
	"github.com/internstack/internstack/internal/app/features/internships"
	applicationstore "github.com/internstack/internstack/internal/app/store/applications"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	internshipstore "github.com/internstack/internstack/internal/app/store/internships"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/indexes"
	"github.com/internstack/internstack/internal/domain/models"
	"github.com/internstack/internstack/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *internships.Handler {
	return internships.NewHandler(
		uierrors.NewErrorLogger(zap.NewNop()),
		studentstore.New(db),
		companystore.New(db),
		internshipstore.New(db),
		applicationstore.New(db),
		zap.NewNop(),
	)
}

func studentSession(st models.Student) *auth.SessionUser {
	return &auth.SessionUser{
		ID:   st.SubjectID.Hex(),
		Name: st.FullName,
		Role: models.RoleStudents,
	}
}

func companySession(co models.Company) *auth.SessionUser {
	return &auth.SessionUser{
		ID:                 co.SubjectID.Hex(),
		Name:               co.CompanyName,
		Role:               models.RoleCompanies,
		VerificationStatus: co.VerificationStatus,
	}
}

func TestHandleApply_CreatesApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	student := f.CreateStudent(ctx, "Apply Student", "apply@example.com")
	company := f.CreateCompany(ctx, "Apply Co", "co@example.com", models.VerificationApproved)
	in := f.CreateInternship(ctx, "Data Intern", "Technology", company)

	req := httptest.NewRequest("POST", "/internship/"+in.ID.Hex()+"/apply", nil)
	req = testutil.WithChiURLParam(req, "id", in.ID.Hex())
	req = auth.WithTestUser(req, studentSession(student))
	rec := httptest.NewRecorder()

	h.HandleApply(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "applied=1") {
		t.Errorf("Location: got %q, want applied confirmation", loc)
	}

	applied, err := applicationstore.New(db).HasApplied(ctx, student.SubjectID, in.ID)
	if err != nil {
		t.Fatalf("HasApplied failed: %v", err)
	}
	if !applied {
		t.Error("application was not recorded")
	}
}

func TestHandleApply_RepeatIsNotASecondApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	f := testutil.NewFixtures(t, db)
	student := f.CreateStudent(ctx, "Repeat Student", "repeat@example.com")
	company := f.CreateCompany(ctx, "Repeat Co", "co@example.com", models.VerificationApproved)
	in := f.CreateInternship(ctx, "QA Intern", "Technology", company)

	apply := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/internship/"+in.ID.Hex()+"/apply", nil)
		req = testutil.WithChiURLParam(req, "id", in.ID.Hex())
		req = auth.WithTestUser(req, studentSession(student))
		rec := httptest.NewRecorder()
		h.HandleApply(rec, req)
		return rec
	}

	first := apply()
	if first.Code != http.StatusSeeOther {
		t.Fatalf("first apply status: got %d, want %d", first.Code, http.StatusSeeOther)
	}

	second := apply()
	if second.Code != http.StatusSeeOther {
		t.Fatalf("second apply status: got %d, want %d", second.Code, http.StatusSeeOther)
	}
	if loc := second.Header().Get("Location"); strings.Contains(loc, "applied=1") {
		t.Error("repeat apply must not show the submitted confirmation")
	}

	n, err := db.Collection("applications").CountDocuments(ctx, map[string]interface{}{
		"student_id":    student.SubjectID,
		"internship_id": in.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("application count: got %d, want 1", n)
	}
}

func TestHandleApply_CompanyForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	company := f.CreateCompany(ctx, "Not A Student", "co@example.com", models.VerificationApproved)
	in := f.CreateInternship(ctx, "Ops Intern", "Business", company)

	req := httptest.NewRequest("POST", "/internship/"+in.ID.Hex()+"/apply", nil)
	req = testutil.WithChiURLParam(req, "id", in.ID.Hex())
	req = auth.WithTestUser(req, companySession(company))
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandleApply(rec, req)
	}()

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandlePostForm_UnverifiedCompanyForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	company := f.CreateCompany(ctx, "Pending Co", "pending@example.com", models.VerificationPending)

	form := url.Values{
		"title":       {"Intern"},
		"category":    {"Technology"},
		"description": {"Work on things."},
	}
	req := httptest.NewRequest("POST", "/company/post-internship", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = auth.WithTestUser(req, companySession(company))
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandlePostForm(rec, req)
	}()

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandlePostForm_ApprovedCompanyCreatesPosting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	company := f.CreateCompany(ctx, "Verified Co", "verified@example.com", models.VerificationApproved)

	form := url.Values{
		"title":       {"Platform Intern"},
		"category":    {"Engineering"},
		"description": {"Build <script>alert(1)</script> infrastructure."},
	}
	req := httptest.NewRequest("POST", "/company/post-internship", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = auth.WithTestUser(req, companySession(company))
	rec := httptest.NewRecorder()

	h.HandlePostForm(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ins, err := internshipstore.New(db).ListByCompany(ctx, company.SubjectID)
	if err != nil {
		t.Fatalf("ListByCompany failed: %v", err)
	}
	if len(ins) != 1 {
		t.Fatalf("posting count: got %d, want 1", len(ins))
	}
	if strings.Contains(ins[0].Description, "<script>") {
		t.Error("description must be sanitized")
	}
}

func TestHandleDelete_OtherCompanyMatchesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	owner := f.CreateCompany(ctx, "Owner Co", "owner@example.com", models.VerificationApproved)
	other := f.CreateCompany(ctx, "Other Co", "other@example.com", models.VerificationApproved)
	in := f.CreateInternship(ctx, "Guarded Intern", "Design", owner)

	req := httptest.NewRequest("POST", "/internship/"+in.ID.Hex()+"/delete", nil)
	req = testutil.WithChiURLParam(req, "id", in.ID.Hex())
	req = auth.WithTestUser(req, companySession(other))
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandleDelete(rec, req)
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("a non-owner delete must not succeed")
	}
	if _, err := internshipstore.New(db).GetByID(ctx, in.ID); err != nil {
		t.Errorf("posting must survive a non-owner delete: %v", err)
	}
}

func TestServeDetail_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("GET", "/internship/ffffffffffffffffffffffff", nil)
	req = testutil.WithChiURLParam(req, "id", "ffffffffffffffffffffffff")
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeDetail(rec, req)
	}()

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func testSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return sm
}

// The marketplace is shared by the three roles but never anonymous: the
// router must turn away visitors without a session before any store is
// touched (the handler here has nil stores and would panic if reached).
func TestListRoutes_AnonymousRedirected(t *testing.T) {
	h := internships.NewHandler(uierrors.NewErrorLogger(zap.NewNop()), nil, nil, nil, nil, zap.NewNop())
	router := internships.ListRoutes(h, testSessionManager(t))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
}

func TestDetailRoutes_AnonymousRedirected(t *testing.T) {
	h := internships.NewHandler(uierrors.NewErrorLogger(zap.NewNop()), nil, nil, nil, nil, zap.NewNop())
	router := internships.DetailRoutes(h, testSessionManager(t))

	req := httptest.NewRequest("GET", "/ffffffffffffffffffffffff", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
}

func TestListRoutes_SignedInRolesPassTheGate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	router := internships.ListRoutes(h, testSessionManager(t))

	users := []*auth.SessionUser{
		testutil.StudentUser(),
		testutil.CompanyUser(models.VerificationApproved),
		testutil.AdminUser(),
	}
	for _, u := range users {
		req := httptest.NewRequest("GET", "/", nil)
		req = auth.WithTestUser(req, u)
		rec := httptest.NewRecorder()

		func() {
			defer func() { _ = recover() }()
			router.ServeHTTP(rec, req)
		}()

		if rec.Code == http.StatusSeeOther {
			t.Errorf("role %s must reach the list, got a redirect to %q", u.Role, rec.Header().Get("Location"))
		}
	}
}
