package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is a role record in the students collection, keyed by subject id.
type Student struct {
	SubjectID  primitive.ObjectID `bson:"_id" json:"subject_id"`
	Email      string             `bson:"email" json:"email"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Education  string             `bson:"education,omitempty" json:"education,omitempty"`
	Skills     string             `bson:"skills,omitempty" json:"skills,omitempty"`
	ResumeURL  string             `bson:"resume_url,omitempty" json:"resume_url,omitempty"`
	LinkedIn   string             `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub     string             `bson:"github,omitempty" json:"github,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
