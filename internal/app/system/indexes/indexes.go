// Package indexes ensures the MongoDB indexes the application relies on.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureIdentities(ctx, db); err != nil {
		problems = append(problems, "identities: "+err.Error())
	}
	if err := ensureStudents(ctx, db); err != nil {
		problems = append(problems, "students: "+err.Error())
	}
	if err := ensureCompanies(ctx, db); err != nil {
		problems = append(problems, "companies: "+err.Error())
	}
	if err := ensureAdmins(ctx, db); err != nil {
		problems = append(problems, "admins: "+err.Error())
	}
	if err := ensureInternships(ctx, db); err != nil {
		problems = append(problems, "internships: "+err.Error())
	}
	if err := ensureApplications(ctx, db); err != nil {
		problems = append(problems, "applications: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			switch {
			case isOptionsConflictErr(err):
				// Same keys under a different name; reuse what is there.
				zap.L().Info("reusing existing index (options conflict)",
					zap.String("collection", coll.Name()),
					zap.String("keys", desiredSig))
			case isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique:
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			default:
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureIdentities(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("identities")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One credential record per email address.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_identities_email"),
		},
	})
}

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("students")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Admin lists sort by folded name.
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_students_fullnameci_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_students_email"),
		},
	})
}

func ensureCompanies(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("companies")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Admin verification queue: pending companies, oldest first.
		{
			Keys:    bson.D{{Key: "verification_status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_companies_verification_created"),
		},
		{
			Keys:    bson.D{{Key: "company_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_companies_nameci_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_companies_email"),
		},
	})
}

func ensureAdmins(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("admins")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_admins_email"),
		},
	})
}

func ensureInternships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("internships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Marketplace list: newest first, optionally filtered by category.
		{
			Keys:    bson.D{{Key: "posted_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_internships_posted_id"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "posted_at", Value: -1}},
			Options: options.Index().SetName("idx_internships_category_posted"),
		},
		// Company dashboard: a company's own postings.
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "posted_at", Value: -1}},
			Options: options.Index().SetName("idx_internships_company_posted"),
		},
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("applications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// A student can apply to an internship at most once. Concurrent
		// double-submits lose to this index, not to a read-then-write check.
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "internship_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_applications_student_internship"),
		},
		// Applicant lists for a posting, newest first.
		{
			Keys:    bson.D{{Key: "internship_id", Value: 1}, {Key: "applied_at", Value: -1}},
			Options: options.Index().SetName("idx_applications_internship_applied"),
		},
		// A student's application history, newest first.
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "applied_at", Value: -1}},
			Options: options.Index().SetName("idx_applications_student_applied"),
		},
		// Company-wide applicant views on the dashboard.
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "applied_at", Value: -1}},
			Options: options.Index().SetName("idx_applications_company_applied"),
		},
	})
}
