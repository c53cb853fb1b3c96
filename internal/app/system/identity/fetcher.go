package identity

import (
	"context"
	"errors"

	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxResolveAttempts bounds how often a resolution is redone when
// invalidations keep landing mid-flight. Past the bound the freshest
// result is accepted as-is.
const maxResolveAttempts = 3

// Fetcher implements auth.UserFetcher on top of the Resolver, with a
// per-subject Tracker so data read before a session-identity event is
// never served after it.
type Fetcher struct {
	resolver *Resolver
	trackers *trackerSet
	log      *zap.Logger
}

// NewFetcher builds the fetcher the session middleware uses.
func NewFetcher(resolver *Resolver, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		trackers: newTrackerSet(),
		log:      logger,
	}
}

// FetchUser resolves the subject and returns the session view of the
// resolved user. It returns (nil, nil) for unresolved subjects so the
// middleware forces sign-out, and (nil, err) for store faults.
//
// Every call resolves fresh from the stores. Concurrent calls for the same
// subject observe the same generation and never supersede each other; when
// an Invalidate lands while a resolution is in flight, the resolution is
// redone so the result reflects the data after the event.
func (f *Fetcher) FetchUser(ctx context.Context, subjectID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(subjectID)
	if err != nil {
		// A malformed id can only come from a corrupt session cookie.
		f.log.Warn("malformed subject id in session", zap.String("subject_id", subjectID))
		return nil, nil
	}

	t := f.trackers.get(oid)

	var u *ResolvedUser
	for attempt := 1; ; attempt++ {
		gen := t.Generation()

		rctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		u, err = f.resolver.Resolve(rctx, oid)
		cancel()
		if err != nil {
			if errors.Is(err, ErrUnresolved) {
				if t.Apply(gen, nil) {
					f.trackers.drop(oid)
					return nil, nil
				}
				// Invalidated mid-flight; the role record may have been
				// written after this read started, so look again.
				if attempt >= maxResolveAttempts {
					return nil, nil
				}
				continue
			}
			return nil, err
		}

		if t.Apply(gen, u) {
			break
		}
		if attempt >= maxResolveAttempts {
			f.log.Warn("resolution repeatedly invalidated mid-flight, accepting freshest result",
				zap.String("subject_id", subjectID))
			break
		}
	}

	// Settled; the next event will create a fresh tracker.
	f.trackers.drop(oid)
	return sessionUser(u), nil
}

// Invalidate marks the subject's in-flight resolutions stale. Login,
// signup, logout and verification decisions call this when they change
// who the session belongs to or what that subject may do.
func (f *Fetcher) Invalidate(subjectID primitive.ObjectID) {
	f.trackers.get(subjectID).Invalidate()
}

// sessionUser converts a ResolvedUser to the auth-layer view.
func sessionUser(u *ResolvedUser) *auth.SessionUser {
	return &auth.SessionUser{
		ID:                 u.SubjectID.Hex(),
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus(),
	}
}
