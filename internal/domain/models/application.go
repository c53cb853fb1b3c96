package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application status values. These are display strings, stored as-is; the
// company applicant view writes them through a fixed select.
const (
	StatusApplied     = "Applied"
	StatusUnderReview = "Under Review"
	StatusSelected    = "Selected"
	StatusRejected    = "Rejected"
)

// ApplicationStatuses lists the allowed status values in workflow order.
var ApplicationStatuses = []string{
	StatusApplied,
	StatusUnderReview,
	StatusSelected,
	StatusRejected,
}

// IsValidApplicationStatus reports whether s is an allowed status value.
func IsValidApplicationStatus(s string) bool {
	for _, st := range ApplicationStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Application records one student applying to one internship. A unique
// compound index on (student_id, internship_id) enforces at most one
// application per pair; the store maps the duplicate-key error to
// ErrAlreadyApplied.
//
// Student, internship, and company fields are denormalized at creation time
// so history and applicant tables render without joins.
type Application struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	InternshipID    primitive.ObjectID `bson:"internship_id" json:"internship_id"`
	InternshipTitle string             `bson:"internship_title" json:"internship_title"`

	StudentID    primitive.ObjectID `bson:"student_id" json:"student_id"`
	StudentName  string             `bson:"student_name" json:"student_name"`
	StudentEmail string             `bson:"student_email" json:"student_email"`

	CompanyID   primitive.ObjectID `bson:"company_id" json:"company_id"`
	CompanyName string             `bson:"company_name" json:"company_name"`

	Status    string    `bson:"status" json:"status"`
	AppliedAt time.Time `bson:"applied_at" json:"applied_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
