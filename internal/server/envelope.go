package server

import (
	"fmt"
	"time"

	"github.com/louisbranch/presenced/internal/presence"
	"github.com/samber/lo"
)

// MessageType identifies both client actions and server pushes on the
// presence websocket.
type MessageType string

const (
	MessageJoin         MessageType = "JOIN"
	MessageLeave        MessageType = "LEAVE"
	MessagePing         MessageType = "PING"
	MessageSystem       MessageType = "SYSTEM"
	MessageRoomPresence MessageType = "ROOM_PRESENCE"
	MessageOnlineUsers  MessageType = "ONLINE_USERS"
	MessageError        MessageType = "ERROR"
	MessageAck          MessageType = "ACK"
)

// Message is the envelope exchanged in both directions on the presence
// websocket. Clients fill type plus the fields their action needs; server
// pushes carry structured payloads in data.
type Message struct {
	Type      MessageType `json:"type"`
	Username  string      `json:"username,omitempty"`
	RoomID    string      `json:"roomId,omitempty"`
	Content   string      `json:"content,omitempty"`
	Data      any         `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type userPresence struct {
	Username string    `json:"username"`
	RoomID   string    `json:"roomId,omitempty"`
	LastSeen time.Time `json:"lastSeen"`
	Status   string    `json:"status"`
}

type roomPresencePayload struct {
	RoomID    string         `json:"roomId"`
	Users     []userPresence `json:"users"`
	UserCount int            `json:"userCount"`
}

type statsPayload struct {
	TotalSessions    int            `json:"totalSessions"`
	TotalRooms       int            `json:"totalRooms"`
	TotalOnlineUsers int            `json:"totalOnlineUsers"`
	Rooms            map[string]int `json:"rooms"`
}

func systemMessage(content, roomID string) Message {
	return Message{
		Type:      MessageSystem,
		RoomID:    roomID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func errorMessage(content string) Message {
	return Message{
		Type:      MessageError,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func ackMessage(content, username, roomID string) Message {
	return Message{
		Type:      MessageAck,
		Username:  username,
		RoomID:    roomID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func toUserPresence(record presence.Presence) userPresence {
	return userPresence{
		Username: record.Username,
		RoomID:   record.RoomID,
		LastSeen: record.LastSeen,
		Status:   string(record.Status),
	}
}

func roomPresenceMessage(roster presence.Roster) Message {
	return Message{
		Type:   MessageRoomPresence,
		RoomID: roster.RoomID,
		Data: roomPresencePayload{
			RoomID: roster.RoomID,
			Users: lo.Map(roster.Users, func(record presence.Presence, _ int) userPresence {
				return toUserPresence(record)
			}),
			UserCount: roster.Count,
		},
		Timestamp: time.Now().UTC(),
	}
}

func onlineUsersMessage(users []presence.Presence) Message {
	return Message{
		Type:    MessageOnlineUsers,
		Content: fmt.Sprintf("%d users online", len(users)),
		Data: lo.Map(users, func(record presence.Presence, _ int) userPresence {
			return toUserPresence(record)
		}),
		Timestamp: time.Now().UTC(),
	}
}

func toStatsPayload(stats presence.Stats) statsPayload {
	return statsPayload{
		TotalSessions:    stats.Sessions,
		TotalRooms:       stats.Rooms,
		TotalOnlineUsers: stats.Users,
		Rooms:            stats.RoomCounts,
	}
}
