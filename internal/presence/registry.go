package presence

import (
	"sync"
	"time"
)

// Registry is the in-memory presence store. It keeps three views of the same
// state: sessions by ID, member sets by room, and a room index by username.
// A single lock guards all three so every operation observes them in a
// consistent state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]map[string]struct{}
	users    map[string]string
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]struct{}),
		users:    make(map[string]string),
	}
}

// Join registers a session and places the username in the room, creating the
// room on first use. Any prior session held under the same session ID, and
// any prior session held by the same username, is removed first so a username
// occupies at most one room through at most one session. The removed sessions
// are returned so callers can refresh the rooms they vacated.
func (r *Registry) Join(sessionID, username, roomID string) (Session, []Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []Session
	if prior, ok := r.sessions[sessionID]; ok {
		r.removeLocked(prior)
		evicted = append(evicted, *prior)
	}
	for id, prior := range r.sessions {
		if id != sessionID && prior.Username == username {
			r.removeLocked(prior)
			evicted = append(evicted, *prior)
		}
	}

	now := time.Now()
	session := &Session{
		SessionID:   sessionID,
		Username:    username,
		RoomID:      roomID,
		ConnectedAt: now,
		LastSeen:    now,
	}
	r.sessions[sessionID] = session

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}
	members[username] = struct{}{}
	r.users[username] = roomID

	return *session, evicted
}

// Leave removes the session and its room membership. Unknown sessions report
// false with no state change.
func (r *Registry) Leave(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	r.removeLocked(session)
	return true
}

// Disconnect tears down a session whose connection was lost without an
// explicit leave. It shares leave semantics; the result is discarded because
// the peer is already gone.
func (r *Registry) Disconnect(sessionID string) {
	r.Leave(sessionID)
}

// Heartbeat marks the session as seen now. Room assignment is untouched and
// unknown sessions report false.
func (r *Registry) Heartbeat(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	session.LastSeen = time.Now()
	return true
}

// RoomPresence lists the room's members with their last-seen times. Unknown
// rooms yield an empty roster rather than an error.
func (r *Registry) RoomPresence(roomID string) Roster {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	users := make([]Presence, 0, len(members))
	for username := range members {
		record := Presence{
			Username: username,
			RoomID:   roomID,
			Status:   StatusOnline,
		}
		if session := r.findByUsernameLocked(username); session != nil {
			record.LastSeen = session.LastSeen
		}
		users = append(users, record)
	}
	return Roster{RoomID: roomID, Users: users, Count: len(users)}
}

// AllOnlineUsers returns one record per registered session.
func (r *Registry) AllOnlineUsers() []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]Presence, 0, len(r.sessions))
	for _, session := range r.sessions {
		users = append(users, Presence{
			Username: session.Username,
			RoomID:   session.RoomID,
			LastSeen: session.LastSeen,
			Status:   StatusOnline,
		})
	}
	return users
}

// RoomMembers returns the usernames sharing the session's room, including
// the caller. Unknown sessions yield nil.
func (r *Registry) RoomMembers(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	members := r.rooms[session.RoomID]
	names := make([]string, 0, len(members))
	for username := range members {
		names = append(names, username)
	}
	return names
}

// GetSession returns a copy of the session when present.
func (r *Registry) GetSession(sessionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// CurrentRoom reports the room a session occupies.
func (r *Registry) CurrentRoom(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return "", false
	}
	return session.RoomID, true
}

// Username reports the username a session registered with.
func (r *Registry) Username(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return "", false
	}
	return session.Username, true
}

// Statistics snapshots occupancy totals and per-room member counts.
func (r *Registry) Statistics() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, len(r.rooms))
	for roomID, members := range r.rooms {
		counts[roomID] = len(members)
	}
	return Stats{
		Sessions:   len(r.sessions),
		Rooms:      len(r.rooms),
		Users:      len(r.users),
		RoomCounts: counts,
	}
}

// removeLocked deletes every trace of the session: its room membership, the
// room itself once empty, the username index entry, and the session record.
// Callers must hold the write lock.
func (r *Registry) removeLocked(session *Session) {
	if members, ok := r.rooms[session.RoomID]; ok {
		delete(members, session.Username)
		if len(members) == 0 {
			delete(r.rooms, session.RoomID)
		}
	}
	delete(r.users, session.Username)
	delete(r.sessions, session.SessionID)
}

func (r *Registry) findByUsernameLocked(username string) *Session {
	for _, session := range r.sessions {
		if session.Username == username {
			return session
		}
	}
	return nil
}
