// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/internstack/internstack/internal/app/system/normalize"
	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.RoleStudents)}
}

// Create inserts the role record for a new student subject.
func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	now := time.Now().UTC()
	st.Email = normalize.Email(st.Email)
	st.FullName = normalize.Name(st.FullName)
	st.FullNameCI = text.Fold(st.FullName)
	st.CreatedAt = now
	st.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// GetBySubject loads a student by subject id.
func (s *Store) GetBySubject(ctx context.Context, subjectID primitive.ObjectID) (models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&st)
	if err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// UpdateProfile modifies the student's editable profile fields and
// refreshes UpdatedAt. Empty strings clear optional fields; the name is
// only replaced when non-empty.
func (s *Store) UpdateProfile(ctx context.Context, subjectID primitive.ObjectID, st models.Student) error {
	set := bson.M{
		"education":  st.Education,
		"skills":     st.Skills,
		"linkedin":   st.LinkedIn,
		"github":     st.GitHub,
		"updated_at": time.Now().UTC(),
	}
	if st.FullName != "" {
		name := normalize.Name(st.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	_, err := s.c.UpdateByID(ctx, subjectID, bson.M{"$set": set})
	return err
}

// SetResumeURL records where the uploaded resume lives in object storage.
func (s *Store) SetResumeURL(ctx context.Context, subjectID primitive.ObjectID, url string) error {
	_, err := s.c.UpdateByID(ctx, subjectID, bson.M{"$set": bson.M{
		"resume_url": url,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// List returns students sorted by folded name. Admin dashboard use.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Student, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Count returns the total number of students.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
