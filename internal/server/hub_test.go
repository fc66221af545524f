package server

import "testing"

func TestHubSubscribeMovesSessionBetweenRooms(t *testing.T) {
	h := newHub()
	h.register("s1", &wsPeer{})

	h.subscribe("s1", "lobby")
	if got := len(h.roomPeers("lobby")); got != 1 {
		t.Fatalf("lobby peers = %d, want 1", got)
	}

	h.subscribe("s1", "ops")
	if got := len(h.roomPeers("lobby")); got != 0 {
		t.Fatalf("lobby peers after move = %d, want 0", got)
	}
	if got := len(h.roomPeers("ops")); got != 1 {
		t.Fatalf("ops peers = %d, want 1", got)
	}
}

func TestHubUnregisterDetachesFromRoom(t *testing.T) {
	h := newHub()
	h.register("s1", &wsPeer{})
	h.register("s2", &wsPeer{})
	h.subscribe("s1", "lobby")
	h.subscribe("s2", "lobby")

	h.unregister("s1")

	if got := len(h.roomPeers("lobby")); got != 1 {
		t.Fatalf("lobby peers = %d, want 1", got)
	}
	if got := len(h.allPeers()); got != 1 {
		t.Fatalf("all peers = %d, want 1", got)
	}
}

func TestHubEmptyRoomIsDropped(t *testing.T) {
	h := newHub()
	h.register("s1", &wsPeer{})
	h.subscribe("s1", "lobby")

	h.unsubscribe("s1")

	if _, ok := h.rooms["lobby"]; ok {
		t.Fatal("expected empty lobby topic to be removed")
	}
	if got := len(h.allPeers()); got != 1 {
		t.Fatalf("all peers = %d, want 1", got)
	}
}
