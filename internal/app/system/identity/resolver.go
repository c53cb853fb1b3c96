// Package identity resolves an authenticated subject to its single business
// role.
//
// Role membership lives in three collections (students, companies, admins)
// keyed by subject id, with the invariant that a subject appears in at most
// one of them. The resolver scans the collections in a fixed priority order
// and stops at the first hit. The order is preserved deliberately: if the
// invariant is ever violated, a student record wins over a company record,
// and a company record over an admin record, deterministically.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/internstack/internstack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrUnresolved is returned when a subject matches none of the role
// collections. Callers treat this as an inconsistent session and force
// sign-out.
var ErrUnresolved = errors.New("subject matches no role collection")

// ResolvedUser is the in-memory union of session identity and the matching
// role record. Exactly one of Student, Company, Admin is non-nil and agrees
// with Role.
type ResolvedUser struct {
	SubjectID primitive.ObjectID
	Email     string
	Role      string // students | companies | admins
	Name      string // full name or company name, per role

	Student *models.Student
	Company *models.Company
	Admin   *models.Admin
}

// VerificationStatus returns the company verification state, or "" for
// non-company users.
func (u *ResolvedUser) VerificationStatus() string {
	if u.Company != nil {
		return u.Company.VerificationStatus
	}
	return ""
}

// Resolver performs the priority scan across the role collections.
//
// StrictErrors controls fault handling. When false (production default) a
// collection lookup fault is logged and treated like "not found", so the
// scan continues and an all-faulted subject resolves to signed-out ("fail
// open to signed-out"). When true, the first fault aborts resolution with
// the error. Neither mode ever retries.
type Resolver struct {
	db           *mongo.Database
	log          *zap.Logger
	StrictErrors bool
}

// NewResolver builds a resolver over the given database.
func NewResolver(db *mongo.Database, logger *zap.Logger) *Resolver {
	return &Resolver{db: db, log: logger}
}

// Resolve looks the subject up in students, then companies, then admins,
// and assembles the ResolvedUser from the first matching record. It returns
// ErrUnresolved when no collection matches.
//
// Resolve is read-only and deterministic: resolving the same subject twice
// with no store mutation in between yields identical results.
func (r *Resolver) Resolve(ctx context.Context, subjectID primitive.ObjectID) (*ResolvedUser, error) {
	filter := bson.M{"_id": subjectID}

	var student models.Student
	err := r.db.Collection(models.RoleStudents).FindOne(ctx, filter).Decode(&student)
	switch {
	case err == nil:
		return &ResolvedUser{
			SubjectID: subjectID,
			Email:     student.Email,
			Role:      models.RoleStudents,
			Name:      student.FullName,
			Student:   &student,
		}, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// keep scanning
	default:
		if r.StrictErrors {
			return nil, fmt.Errorf("students lookup: %w", err)
		}
		r.log.Error("students lookup failed, continuing scan",
			zap.String("subject_id", subjectID.Hex()), zap.Error(err))
	}

	var company models.Company
	err = r.db.Collection(models.RoleCompanies).FindOne(ctx, filter).Decode(&company)
	switch {
	case err == nil:
		return &ResolvedUser{
			SubjectID: subjectID,
			Email:     company.Email,
			Role:      models.RoleCompanies,
			Name:      company.CompanyName,
			Company:   &company,
		}, nil
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		if r.StrictErrors {
			return nil, fmt.Errorf("companies lookup: %w", err)
		}
		r.log.Error("companies lookup failed, continuing scan",
			zap.String("subject_id", subjectID.Hex()), zap.Error(err))
	}

	var admin models.Admin
	err = r.db.Collection(models.RoleAdmins).FindOne(ctx, filter).Decode(&admin)
	switch {
	case err == nil:
		return &ResolvedUser{
			SubjectID: subjectID,
			Email:     admin.Email,
			Role:      models.RoleAdmins,
			Name:      admin.FullName,
			Admin:     &admin,
		}, nil
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		if r.StrictErrors {
			return nil, fmt.Errorf("admins lookup: %w", err)
		}
		r.log.Error("admins lookup failed, continuing scan",
			zap.String("subject_id", subjectID.Hex()), zap.Error(err))
	}

	return nil, ErrUnresolved
}

// ResolveClaimed looks the subject up in the claimed role's collection only.
// This is the login path: a valid credential with no record under the
// claimed role is a role mismatch, never a fall-through to the priority
// scan.
func (r *Resolver) ResolveClaimed(ctx context.Context, subjectID primitive.ObjectID, claimedRole string) (*ResolvedUser, error) {
	if !models.IsValidRole(claimedRole) {
		return nil, fmt.Errorf("unknown role %q", claimedRole)
	}

	filter := bson.M{"_id": subjectID}
	switch claimedRole {
	case models.RoleStudents:
		var student models.Student
		if err := r.db.Collection(models.RoleStudents).FindOne(ctx, filter).Decode(&student); err != nil {
			return nil, err
		}
		return &ResolvedUser{
			SubjectID: subjectID,
			Email:     student.Email,
			Role:      models.RoleStudents,
			Name:      student.FullName,
			Student:   &student,
		}, nil
	case models.RoleCompanies:
		var company models.Company
		if err := r.db.Collection(models.RoleCompanies).FindOne(ctx, filter).Decode(&company); err != nil {
			return nil, err
		}
		return &ResolvedUser{
			SubjectID: subjectID,
			Email:     company.Email,
			Role:      models.RoleCompanies,
			Name:      company.CompanyName,
			Company:   &company,
		}, nil
	default:
		var admin models.Admin
		if err := r.db.Collection(models.RoleAdmins).FindOne(ctx, filter).Decode(&admin); err != nil {
			return nil, err
		}
		return &ResolvedUser{
			SubjectID: subjectID,
			Email:     admin.Email,
			Role:      models.RoleAdmins,
			Name:      admin.FullName,
			Admin:     &admin,
		}, nil
	}
}

// AnyRoleExists reports whether the subject already has a record in any of
// the three role collections. Signup uses this to refuse creating a second
// role for the same subject, closing the invariant at write time instead of
// relying on scan order at read time.
func (r *Resolver) AnyRoleExists(ctx context.Context, subjectID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": subjectID}
	for _, coll := range models.RoleCollections {
		err := r.db.Collection(coll).FindOne(ctx, filter).Err()
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, fmt.Errorf("%s lookup: %w", coll, err)
		}
	}
	return false, nil
}
