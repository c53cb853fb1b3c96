package studentstore_test

import (
	"testing"

	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/domain/models"
	"github.com/internstack/internstack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Student{
		SubjectID: primitive.NewObjectID(),
		Email:     "Ada@Example.com",
		FullName:  "  Ada Lovelace  ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.FullName != "Ada Lovelace" {
		t.Errorf("name not trimmed: %q", created.FullName)
	}
	if created.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := fixtures.CreateStudent(ctx, "Ada Lovelace", "ada@example.com")

	err := store.UpdateProfile(ctx, s.SubjectID, models.Student{
		FullName:  "Ada King",
		Education: "Analytical Engine Institute",
		Skills:    "Mathematics, Programming",
		LinkedIn:  "https://linkedin.com/in/ada",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := store.GetBySubject(ctx, s.SubjectID)
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if got.FullName != "Ada King" {
		t.Errorf("FullName: got %q", got.FullName)
	}
	if got.Education != "Analytical Engine Institute" {
		t.Errorf("Education: got %q", got.Education)
	}
	if got.GitHub != "" {
		t.Errorf("cleared optional field should stay empty, got %q", got.GitHub)
	}
	if !got.UpdatedAt.After(s.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestStore_SetResumeURL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := fixtures.CreateStudent(ctx, "Ada Lovelace", "ada@example.com")

	if err := store.SetResumeURL(ctx, s.SubjectID, "resumes/abc123.pdf"); err != nil {
		t.Fatalf("SetResumeURL failed: %v", err)
	}

	got, err := store.GetBySubject(ctx, s.SubjectID)
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if got.ResumeURL != "resumes/abc123.pdf" {
		t.Errorf("ResumeURL: got %q", got.ResumeURL)
	}
}

func TestStore_ListAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateStudent(ctx, "Charlie", "c@example.com")
	fixtures.CreateStudent(ctx, "Alice", "a@example.com")
	fixtures.CreateStudent(ctx, "Bob", "b@example.com")

	students, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("expected 3 students, got %d", len(students))
	}
	if students[0].FullName != "Alice" || students[2].FullName != "Charlie" {
		t.Errorf("expected name order, got %q .. %q", students[0].FullName, students[2].FullName)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}
