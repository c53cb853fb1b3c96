package identitystore_test

import (
	"errors"
	"testing"

	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	"github.com/internstack/internstack/internal/app/system/indexes"
	"github.com/internstack/internstack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Create(ctx, "Ada@Example.COM", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if id.ID == primitive.NilObjectID {
		t.Error("expected subject id to be assigned")
	}
	if id.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", id.Email)
	}
	if len(id.PasswordHash) == 0 {
		t.Error("expected password hash to be set")
	}
	if id.AuthMethod != identitystore.MethodPassword {
		t.Errorf("auth method: got %q", id.AuthMethod)
	}
	if id.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, "ada@example.com", "password one"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same address with different case must still collide.
	_, err := store.Create(ctx, "ADA@example.com", "password two")
	if !errors.Is(err, identitystore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "ada@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	id, err := store.Authenticate(ctx, "ada@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if id.ID != created.ID {
		t.Error("authenticated identity does not match created identity")
	}
}

func TestStore_Authenticate_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "ada@example.com", "correct horse battery staple"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := store.Authenticate(ctx, "ada@example.com", "wrong password")
	if !errors.Is(err, identitystore.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestStore_Authenticate_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Unknown email and wrong password must be indistinguishable.
	_, err := store.Authenticate(ctx, "nobody@example.com", "whatever")
	if !errors.Is(err, identitystore.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestStore_Authenticate_OAuthIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.CreateOAuth(ctx, "ada@example.com"); err != nil {
		t.Fatalf("CreateOAuth failed: %v", err)
	}

	// Password login against a Google-only identity must fail closed.
	_, err := store.Authenticate(ctx, "ada@example.com", "")
	if !errors.Is(err, identitystore.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := identitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Create(ctx, "ada@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, id.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The email is free again for a new signup.
	if _, err := store.Create(ctx, "ada@example.com", "another password"); err != nil {
		t.Fatalf("re-Create after Delete failed: %v", err)
	}
}
