// internal/app/store/internships/internshipstore.go
package internshipstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidCategory means the category is not one of the postable values.
var ErrInvalidCategory = errors.New("invalid internship category")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("internships")}
}

// Create publishes a new posting for the owning company. Company fields are
// denormalized onto the posting so listings render without a join.
func (s *Store) Create(ctx context.Context, in models.Internship) (models.Internship, error) {
	if !models.IsValidCategory(in.Category) {
		return models.Internship{}, ErrInvalidCategory
	}
	in.ID = primitive.NewObjectID()
	in.TitleCI = text.Fold(in.Title)
	in.CompanyNameCI = text.Fold(in.CompanyName)
	in.PostedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, in); err != nil {
		return models.Internship{}, err
	}
	return in, nil
}

// GetByID loads one posting.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Internship, error) {
	var in models.Internship
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&in)
	if err != nil {
		return models.Internship{}, err
	}
	return in, nil
}

// List returns postings newest first, optionally narrowed by a category and
// a search term matched against the folded title and company name.
func (s *Store) List(ctx context.Context, search, category string, limit int64) ([]models.Internship, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if search != "" {
		// Anchored on folded fields; QuoteMeta keeps user input out of the
		// regex grammar.
		re := primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(search))}
		filter["$or"] = bson.A{
			bson.M{"title_ci": re},
			bson.M{"company_name_ci": re},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "posted_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var internships []models.Internship
	if err := cur.All(ctx, &internships); err != nil {
		return nil, err
	}
	return internships, nil
}

// ListByCompany returns a company's own postings, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Internship, error) {
	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var internships []models.Internship
	if err := cur.All(ctx, &internships); err != nil {
		return nil, err
	}
	return internships, nil
}

// Delete removes a posting owned by the given company. The owner filter is
// part of the delete so one company can never remove another's posting.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the total number of postings.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByCompany returns how many postings a company has published.
func (s *Store) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"company_id": companyID})
}
