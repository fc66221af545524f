package server

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/presenced/internal/presence"
)

func TestRoomPresenceMessageWireFields(t *testing.T) {
	roster := presence.Roster{
		RoomID: "lobby",
		Users: []presence.Presence{
			{Username: "alice", RoomID: "lobby", LastSeen: time.Now(), Status: presence.StatusOnline},
		},
		Count: 1,
	}

	raw, err := json.Marshal(roomPresenceMessage(roster))
	if err != nil {
		t.Fatalf("marshal room presence message: %v", err)
	}

	for _, field := range []string{`"type":"ROOM_PRESENCE"`, `"roomId":"lobby"`, `"userCount":1`, `"lastSeen"`, `"status":"ONLINE"`, `"timestamp"`} {
		if !strings.Contains(string(raw), field) {
			t.Fatalf("message %s missing %s", raw, field)
		}
	}
}

func TestOnlineUsersMessageCountsUsers(t *testing.T) {
	users := []presence.Presence{
		{Username: "alice", RoomID: "lobby", Status: presence.StatusOnline},
		{Username: "bob", RoomID: "ops", Status: presence.StatusOnline},
	}

	msg := onlineUsersMessage(users)

	if msg.Content != "2 users online" {
		t.Fatalf("content = %q, want %q", msg.Content, "2 users online")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal online users message: %v", err)
	}
	if !strings.Contains(string(raw), `"username":"alice"`) || !strings.Contains(string(raw), `"username":"bob"`) {
		t.Fatalf("message %s missing user entries", raw)
	}
}

func TestOnlineUsersMessageEmptyListHasEmptyData(t *testing.T) {
	raw, err := json.Marshal(onlineUsersMessage(nil))
	if err != nil {
		t.Fatalf("marshal online users message: %v", err)
	}
	if !strings.Contains(string(raw), `"content":"0 users online"`) {
		t.Fatalf("message %s missing zero count", raw)
	}
	if !strings.Contains(string(raw), `"data":[]`) {
		t.Fatalf("message %s missing empty user list", raw)
	}
}
