// internal/app/store/applications/applicationstore.go
package applicationstore

import (
	"context"
	"errors"
	"time"

	"github.com/internstack/internstack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrAlreadyApplied means this student already has an application for
	// this internship. Enforced by the unique (student_id, internship_id)
	// index, so concurrent double-submits cannot slip through.
	ErrAlreadyApplied = errors.New("you have already applied to this internship")

	// ErrInvalidStatus means the status value is not part of the workflow.
	ErrInvalidStatus = errors.New("invalid application status")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// Create records a student applying to an internship. The student and
// posting fields arrive denormalized from the caller; Status starts at
// Applied.
func (s *Store) Create(ctx context.Context, app models.Application) (models.Application, error) {
	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.Status = models.StatusApplied
	app.AppliedAt = now
	app.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, app); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrAlreadyApplied
		}
		return models.Application{}, err
	}
	return app, nil
}

// GetByID loads one application.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Application, error) {
	var app models.Application
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err != nil {
		return models.Application{}, err
	}
	return app, nil
}

// HasApplied reports whether the student already applied to the internship.
// The UI uses this to disable the apply button; Create remains the
// authority under races.
func (s *Store) HasApplied(ctx context.Context, studentID, internshipID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"student_id":    studentID,
		"internship_id": internshipID,
	}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateStatus moves an application through the review workflow. The
// company filter is part of the update so only the posting's owner can
// change status.
func (s *Store) UpdateStatus(ctx context.Context, id, companyID primitive.ObjectID, status string) error {
	if !models.IsValidApplicationStatus(status) {
		return ErrInvalidStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByStudent returns a student's application history, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Application, error) {
	return s.list(ctx, bson.M{"student_id": studentID})
}

// ListByInternship returns the applicants for one posting, newest first.
func (s *Store) ListByInternship(ctx context.Context, internshipID primitive.ObjectID) ([]models.Application, error) {
	return s.list(ctx, bson.M{"internship_id": internshipID})
}

// ListByCompany returns all applications across a company's postings,
// newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Application, error) {
	return s.list(ctx, bson.M{"company_id": companyID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Count returns the total number of applications.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByInternship returns the applicant count for one posting.
func (s *Store) CountByInternship(ctx context.Context, internshipID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"internship_id": internshipID})
}
