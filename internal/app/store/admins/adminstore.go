// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"time"

	"github.com/internstack/internstack/internal/app/system/normalize"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Admin records are created out of band (seed script or another admin);
// there is no self-serve admin signup.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.RoleAdmins)}
}

// Create inserts the role record for a new admin subject.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	a.Email = normalize.Email(a.Email)
	a.FullName = normalize.Name(a.FullName)
	a.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// GetBySubject loads an admin by subject id.
func (s *Store) GetBySubject(ctx context.Context, subjectID primitive.ObjectID) (models.Admin, error) {
	var a models.Admin
	err := s.c.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&a)
	if err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// Count returns the total number of admins.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
