package session

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/proposal-review/advisor/internal/agent/model"
	errx "github.com/proposal-review/advisor/internal/core/error"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

// Registry owns the live sessions of a process. Sessions idle longer than the
// configured TTL are evicted and closed.
type Registry struct {
	assistant Assistant
	records   RecordSource
	cfg       model.SessionConfig
	sessions  *cache.Cache
}

func NewRegistry(a Assistant, records RecordSource, cfg model.SessionConfig) *Registry {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl / 2
	if cleanup <= 0 || cleanup > time.Minute {
		cleanup = time.Minute
	}

	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
			logx.Debug().Str("session_id", id).Msg("Session evicted")
		}
	})
	return &Registry{assistant: a, records: records, cfg: cfg, sessions: c}
}

// Create starts a new session with a random id.
func (r *Registry) Create(open bool) *Session {
	s := New(uuid.NewString(), r.assistant, r.records, r.cfg, open)
	r.sessions.SetDefault(s.ID(), s)
	logx.Info().Str("session_id", s.ID()).Bool("open", open).Msg("Session created")
	return s
}

// Get returns the session and refreshes its idle deadline.
func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, errx.NotFound("session %q not found", id)
	}
	s := v.(*Session)
	r.sessions.SetDefault(id, s)
	// The janitor may have closed it between the lookup and the refresh.
	if s.Snapshot().Closed {
		r.sessions.Delete(id)
		return nil, errx.NotFound("session %q is closed", id)
	}
	return s, nil
}

// Delete closes and forgets the session.
func (r *Registry) Delete(id string) error {
	if _, ok := r.sessions.Get(id); !ok {
		return errx.NotFound("session %q not found", id)
	}
	r.sessions.Delete(id)
	return nil
}

// List returns snapshots of all live sessions ordered by id.
func (r *Registry) List() []Snapshot {
	items := r.sessions.Items()
	out := make([]Snapshot, 0, len(items))
	for _, it := range items {
		if s, ok := it.Object.(*Session); ok {
			if snap := s.Snapshot(); !snap.Closed {
				out = append(out, snap)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close closes every session.
func (r *Registry) Close() {
	for id := range r.sessions.Items() {
		r.sessions.Delete(id)
	}
}
