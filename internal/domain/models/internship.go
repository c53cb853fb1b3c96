package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Internship categories offered by the posting form. "All" is a UI filter
// value only and never stored.
var InternshipCategories = []string{
	"Technology",
	"Marketing",
	"Design",
	"Business",
	"Engineering",
}

// IsValidCategory reports whether c is a postable category.
func IsValidCategory(c string) bool {
	for _, cat := range InternshipCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Internship is a posting owned by a company. Postings are immutable after
// creation; there is no edit flow.
type Internship struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`

	// Denormalized company fields so listings render without a join.
	CompanyID     primitive.ObjectID `bson:"company_id" json:"company_id"`
	CompanyName   string             `bson:"company_name" json:"company_name"`
	CompanyNameCI string             `bson:"company_name_ci" json:"company_name_ci"`

	PostedAt time.Time `bson:"posted_at" json:"posted_at"`
}
