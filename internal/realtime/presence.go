// Package realtime owns the live-notification transport: the presence
// registry (who is reachable right now) and the WebSocket hub (the sessions
// themselves).
package realtime

import "sync"

// Presence maps an authenticated user to at most one live session.
//
// It is an injected dependency, not a package-level map: the dispatcher and
// the hub both receive the same instance, and tests construct their own.
// That also leaves the door open to swapping in an external pub/sub-backed
// registry for a multi-instance deployment later.
//
// SEMANTICS:
//   - Register overwrites: a second login from another tab evicts the first
//     session from receiving pushes. The first transport is not closed — it
//     just stops being the delivery target.
//   - Unregister is keyed by SESSION, not user: when an old, already-evicted
//     session disconnects, it must not tear down the newer session's mapping.
//
// All three operations take the mutex, so concurrent connects/disconnects
// cannot interleave torn updates.
type Presence struct {
	mu       sync.Mutex
	sessions map[string]string // userID → sessionID
}

func NewPresence() *Presence {
	return &Presence{sessions: make(map[string]string)}
}

// Register binds userID to sessionID, replacing any previous session.
func (p *Presence) Register(userID, sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[userID] = sessionID
}

// Unregister removes whichever user currently maps to sessionID.
// No-op if the session was already evicted by a newer login.
func (p *Presence) Unregister(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for userID, sid := range p.sessions {
		if sid == sessionID {
			delete(p.sessions, userID)
			return
		}
	}
}

// Lookup returns the live session for userID, if any.
func (p *Presence) Lookup(userID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sid, ok := p.sessions[userID]
	return sid, ok
}
