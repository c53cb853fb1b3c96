package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a role record in the admins collection. Admins carry no
// role-specific fields beyond identity; the record's existence is what
// grants the role.
type Admin struct {
	SubjectID primitive.ObjectID `bson:"_id" json:"subject_id"`
	Email     string             `bson:"email" json:"email"`
	FullName  string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
