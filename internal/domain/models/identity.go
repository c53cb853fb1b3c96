package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is a credential record in the identities collection. Its _id is
// the subject id that keys the role collections. An identity says nothing
// about what the subject *is*; that lives in exactly one role collection.
type Identity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash []byte             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
