package identity

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tracker fences resolution results for one subject against
// session-identity events.
//
// Plain reads all observe the same generation and may install in any
// order; only an event that changes who the session belongs to (login,
// signup, logout, a verification decision) bumps the generation via
// Invalidate. A resolution is installed only while the generation it
// observed is still current, so data read before the event never lands
// after it. Last event wins, not last completion.
type Tracker struct {
	mu   sync.RWMutex
	gen  uint64
	user *ResolvedUser
}

// Generation returns the current generation for a resolution to observe.
// It never bumps; concurrent reads share a generation.
func (t *Tracker) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gen
}

// Apply installs a resolution result if gen is still the current
// generation. It reports whether the result was installed; a false return
// means an invalidation landed after the resolution started.
func (t *Tracker) Apply(gen uint64, user *ResolvedUser) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return false
	}
	t.user = user
	return true
}

// Invalidate clears the installed user and bumps the generation, marking
// every in-flight resolution stale. Called on sign-out and on any event
// that changes which subject the session belongs to or what that subject
// is allowed to do.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.user = nil
}

// Current returns the most recently installed resolution result, which is
// nil when signed out or not yet resolved.
func (t *Tracker) Current() *ResolvedUser {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.user
}

// trackerSet holds one Tracker per subject. Entries are short-lived: the
// fetcher drops a subject's tracker once a resolution settles, so the map
// holds only subjects with an unconsumed invalidation or a resolution in
// flight, not every subject the process has ever seen.
type trackerSet struct {
	mu       sync.Mutex
	trackers map[primitive.ObjectID]*Tracker
}

func newTrackerSet() *trackerSet {
	return &trackerSet{trackers: make(map[primitive.ObjectID]*Tracker)}
}

func (s *trackerSet) get(subjectID primitive.ObjectID) *Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trackers[subjectID]
	if !ok {
		t = &Tracker{}
		s.trackers[subjectID] = t
	}
	return t
}

func (s *trackerSet) drop(subjectID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trackers, subjectID)
}

func (s *trackerSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trackers)
}
