// internal/app/store/companies/companystore.go
package companystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/internstack/internstack/internal/app/system/normalize"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidStatus means the verification status value is not one of
// pending, approved, rejected.
var ErrInvalidStatus = errors.New("invalid verification status")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.RoleCompanies)}
}

// Create inserts the role record for a new company subject. New companies
// start pending; only an admin can approve or reject.
func (s *Store) Create(ctx context.Context, co models.Company) (models.Company, error) {
	now := time.Now().UTC()
	co.Email = normalize.Email(co.Email)
	co.CompanyName = normalize.Name(co.CompanyName)
	co.CompanyNameCI = text.Fold(co.CompanyName)
	if co.VerificationStatus == "" {
		co.VerificationStatus = models.VerificationPending
	}
	co.CreatedAt = now
	co.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, co); err != nil {
		return models.Company{}, err
	}
	return co, nil
}

// GetBySubject loads a company by subject id.
func (s *Store) GetBySubject(ctx context.Context, subjectID primitive.ObjectID) (models.Company, error) {
	var co models.Company
	err := s.c.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&co)
	if err != nil {
		return models.Company{}, err
	}
	return co, nil
}

// UpdateProfile modifies the company's editable profile fields. The
// verification status is not touched here.
func (s *Store) UpdateProfile(ctx context.Context, subjectID primitive.ObjectID, co models.Company) error {
	set := bson.M{
		"website":     co.Website,
		"description": co.Description,
		"updated_at":  time.Now().UTC(),
	}
	if co.CompanyName != "" {
		name := normalize.Name(co.CompanyName)
		set["company_name"] = name
		set["company_name_ci"] = text.Fold(name)
	}
	_, err := s.c.UpdateByID(ctx, subjectID, bson.M{"$set": set})
	return err
}

// UpdateVerification sets the verification status. Admin verification flow.
func (s *Store) UpdateVerification(ctx context.Context, subjectID primitive.ObjectID, status string) error {
	if !models.IsValidVerificationStatus(status) {
		return ErrInvalidStatus
	}
	res, err := s.c.UpdateByID(ctx, subjectID, bson.M{"$set": bson.M{
		"verification_status": status,
		"updated_at":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListPending returns companies awaiting verification, oldest first, so the
// admin queue works through requests in arrival order.
func (s *Store) ListPending(ctx context.Context) ([]models.Company, error) {
	return s.listByStatus(ctx, models.VerificationPending)
}

func (s *Store) listByStatus(ctx context.Context, status string) ([]models.Company, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"verification_status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var companies []models.Company
	if err := cur.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// List returns all companies sorted by folded name.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Company, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "company_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var companies []models.Company
	if err := cur.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Count returns the total number of companies.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountPending returns how many companies are awaiting verification.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"verification_status": models.VerificationPending})
}
