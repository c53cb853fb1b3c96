package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is a role record in the companies collection, keyed by subject id.
//
// VerificationStatus gates posting: only approved companies may create
// internship listings. New companies start as pending.
type Company struct {
	SubjectID     primitive.ObjectID `bson:"_id" json:"subject_id"`
	Email         string             `bson:"email" json:"email"`
	CompanyName   string             `bson:"company_name" json:"company_name"`
	CompanyNameCI string             `bson:"company_name_ci" json:"company_name_ci"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`

	// pending | approved | rejected
	VerificationStatus string `bson:"verification_status" json:"verification_status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CanPost reports whether the company may create internship postings.
func (c *Company) CanPost() bool {
	return c.VerificationStatus == VerificationApproved
}
