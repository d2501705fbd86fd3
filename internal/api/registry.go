package api

import (
	"sync"
	"time"

	"github.com/abhisek/edugenie/internal/session"
	"github.com/abhisek/edugenie/internal/tutor"
)

// registry keeps live quiz sessions by id and drops idle ones.
type registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
}

type entry struct {
	sess     *session.Session
	lastUsed time.Time
}

func newRegistry(ttl time.Duration) *registry {
	return &registry{ttl: ttl, entries: make(map[string]*entry)}
}

func (r *registry) put(s *session.Session, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID()] = &entry{sess: s, lastUsed: now}
}

// get returns the session and refreshes its idle timer.
func (r *registry) get(id string, now time.Time) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = now
	return e.sess, true
}

// sweep removes sessions idle for longer than the ttl and returns how many
// were removed.
func (r *registry) sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// tutors holds one tutor conversation per user and drops conversations
// idle for longer than the ttl.
type tutors struct {
	mu     sync.Mutex
	ttl    time.Duration
	agents map[string]*tutorEntry
	create func() *tutor.Agent
}

type tutorEntry struct {
	agent    *tutor.Agent
	lastUsed time.Time
}

func newTutors(ttl time.Duration, create func() *tutor.Agent) *tutors {
	return &tutors{ttl: ttl, agents: make(map[string]*tutorEntry), create: create}
}

func (t *tutors) get(user string, now time.Time) *tutor.Agent {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.agents[user]
	if !ok {
		e = &tutorEntry{agent: t.create()}
		t.agents[user] = e
	}
	e.lastUsed = now
	return e.agent
}

func (t *tutors) sweep(now time.Time) int {
	if t.ttl <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for user, e := range t.agents {
		if now.Sub(e.lastUsed) > t.ttl {
			delete(t.agents, user)
			removed++
		}
	}
	return removed
}

func (t *tutors) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.agents)
}
