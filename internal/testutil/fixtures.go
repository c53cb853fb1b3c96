package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent inserts a student role record and returns it.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Student{
		SubjectID:  primitive.NewObjectID(),
		Email:      email,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Education:  "Test University",
		Skills:     "Go, SQL",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection(models.RoleStudents).InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return s
}

// CreateCompany inserts a company role record with the given verification
// status and returns it.
func (f *Fixtures) CreateCompany(ctx context.Context, companyName, email, verification string) models.Company {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Company{
		SubjectID:          primitive.NewObjectID(),
		Email:              email,
		CompanyName:        companyName,
		CompanyNameCI:      text.Fold(companyName),
		VerificationStatus: verification,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := f.db.Collection(models.RoleCompanies).InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test company: %v", err)
	}
	return c
}

// CreateAdmin inserts an admin role record and returns it.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.Admin {
	f.t.Helper()

	a := models.Admin{
		SubjectID: primitive.NewObjectID(),
		Email:     email,
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection(models.RoleAdmins).InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}

// CreateInternship inserts a posting owned by the given company.
func (f *Fixtures) CreateInternship(ctx context.Context, title, category string, company models.Company) models.Internship {
	f.t.Helper()

	i := models.Internship{
		ID:            primitive.NewObjectID(),
		Title:         title,
		TitleCI:       text.Fold(title),
		Category:      category,
		Description:   "Test description.",
		CompanyID:     company.SubjectID,
		CompanyName:   company.CompanyName,
		CompanyNameCI: company.CompanyNameCI,
		PostedAt:      time.Now().UTC(),
	}
	if _, err := f.db.Collection("internships").InsertOne(ctx, i); err != nil {
		f.t.Fatalf("failed to create test internship: %v", err)
	}
	return i
}

// CreateApplication inserts an application linking a student to a posting.
func (f *Fixtures) CreateApplication(ctx context.Context, student models.Student, internship models.Internship) models.Application {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Application{
		ID:              primitive.NewObjectID(),
		InternshipID:    internship.ID,
		InternshipTitle: internship.Title,
		StudentID:       student.SubjectID,
		StudentName:     student.FullName,
		StudentEmail:    student.Email,
		CompanyID:       internship.CompanyID,
		CompanyName:     internship.CompanyName,
		Status:          models.StatusApplied,
		AppliedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("applications").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test application: %v", err)
	}
	return a
}
