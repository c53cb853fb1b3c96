// internal/app/store/identities/identitystore.go
package identitystore

import (
	"context"
	"errors"
	"time"

	"github.com/internstack/internstack/internal/app/system/normalize"
	"github.com/internstack/internstack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Auth methods recorded on an identity.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
)

var (
	// ErrDuplicateEmail means an identity with this email already exists.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	// ErrBadCredentials covers both unknown email and wrong password so the
	// login form can't be used to probe which emails are registered.
	ErrBadCredentials = errors.New("invalid email or password")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("identities")}
}

// Create stores a password credential and returns the new identity. The
// identity's ID is the subject id the role collections key on.
func (s *Store) Create(ctx context.Context, email, password string) (models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Identity{}, err
	}

	id := models.Identity{
		ID:           primitive.NewObjectID(),
		Email:        normalize.Email(email),
		PasswordHash: hash,
		AuthMethod:   MethodPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, id); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Identity{}, ErrDuplicateEmail
		}
		return models.Identity{}, err
	}
	return id, nil
}

// CreateOAuth stores an identity authenticated by an external provider.
// There is no password hash; Authenticate always fails for these.
func (s *Store) CreateOAuth(ctx context.Context, email string) (models.Identity, error) {
	id := models.Identity{
		ID:         primitive.NewObjectID(),
		Email:      normalize.Email(email),
		AuthMethod: MethodGoogle,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, id); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Identity{}, ErrDuplicateEmail
		}
		return models.Identity{}, err
	}
	return id, nil
}

// Authenticate verifies a password credential. It returns ErrBadCredentials
// for unknown emails, OAuth-only identities, and wrong passwords alike.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.Identity, error) {
	var id models.Identity
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Identity{}, ErrBadCredentials
		}
		return models.Identity{}, err
	}
	if len(id.PasswordHash) == 0 {
		return models.Identity{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(id.PasswordHash, []byte(password)); err != nil {
		return models.Identity{}, ErrBadCredentials
	}
	return id, nil
}

// GetByEmail loads an identity by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Identity, error) {
	var id models.Identity
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&id)
	if err != nil {
		return models.Identity{}, err
	}
	return id, nil
}

// GetByID loads an identity by subject id.
func (s *Store) GetByID(ctx context.Context, subjectID primitive.ObjectID) (models.Identity, error) {
	var id models.Identity
	err := s.c.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&id)
	if err != nil {
		return models.Identity{}, err
	}
	return id, nil
}

// Delete removes a credential record. Used when signup fails after the
// identity was created, so the email is not left claimed by a dead account.
func (s *Store) Delete(ctx context.Context, subjectID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": subjectID})
	return err
}
