package radio

import "sync"

// Registry is the process-wide guild→session store, passed by reference to
// whoever routes commands. Sessions drop themselves from it on stop.
type Registry struct {
	deps Deps

	// DefaultVolume supplies a persisted per-guild starting volume;
	// sessions start at 1.0 when nil.
	defaultVolume func(guildID string) float64

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps, defaultVolume func(guildID string) float64) *Registry {
	return &Registry{
		deps:          deps,
		defaultVolume: defaultVolume,
		sessions:      make(map[string]*Session),
	}
}

// GetOrCreate returns the session for a guild, creating one lazily. The
// second return value reports whether this call created it, so callers can
// discard a freshly made session whose first play request failed.
func (r *Registry) GetOrCreate(guildID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s, false
	}

	s := NewSession(guildID, r.deps)
	if r.defaultVolume != nil {
		if v := r.defaultVolume(guildID); v > 0 {
			s.volume = v
		}
	}
	s.onStop = func() { r.drop(guildID, s) }
	r.sessions[guildID] = s
	return s, true
}

// Get returns the session for a guild, if any.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Delete removes a guild's session from the registry without tearing it
// down. Used to discard idle orphans after a rejected first play.
func (r *Registry) Delete(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}

// StopAll tears down every live session. Stop re-enters the registry via
// onStop, so the snapshot is taken before any teardown starts.
func (r *Registry) StopAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}

// drop removes the session only if it is still the registered one, so a
// stale teardown cannot evict a replacement session.
func (r *Registry) drop(guildID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[guildID] == s {
		delete(r.sessions, guildID)
	}
}
