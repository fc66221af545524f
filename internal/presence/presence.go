// Package presence tracks which users are connected and which room each one
// occupies. The registry is the single owner of that state; transports call
// into it and broadcast the results.
package presence

import "time"

// Status describes a presence record's state. Only StatusOnline is produced
// today; the other values exist for consumers that track transitions
// themselves.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusIdle    Status = "IDLE"
	StatusOffline Status = "OFFLINE"
)

// Session records one live connection's identity and room assignment.
// Lookups return copies, so holding a Session never observes later updates.
type Session struct {
	SessionID   string
	Username    string
	RoomID      string
	ConnectedAt time.Time
	LastSeen    time.Time
}

// Presence is one roster or online-list entry.
type Presence struct {
	Username string
	RoomID   string
	LastSeen time.Time
	Status   Status
}

// Roster lists the members of one room.
type Roster struct {
	RoomID string
	Users  []Presence
	Count  int
}

// Stats summarizes registry occupancy for monitoring.
type Stats struct {
	Sessions   int
	Rooms      int
	Users      int
	RoomCounts map[string]int
}
