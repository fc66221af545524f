package server

import (
	"encoding/json"
	"sync"
)

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) write(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(msg)
}

// hub indexes connected peers by session and by room topic. Broadcast
// helpers snapshot their audience under the lock and write outside it.
type hub struct {
	mu     sync.Mutex
	peers  map[string]*wsPeer
	rooms  map[string]map[string]struct{}
	inRoom map[string]string
}

func newHub() *hub {
	return &hub{
		peers:  make(map[string]*wsPeer),
		rooms:  make(map[string]map[string]struct{}),
		inRoom: make(map[string]string),
	}
}

func (h *hub) register(sessionID string, peer *wsPeer) {
	h.mu.Lock()
	h.peers[sessionID] = peer
	h.mu.Unlock()
}

func (h *hub) unregister(sessionID string) {
	h.mu.Lock()
	h.detachLocked(sessionID)
	delete(h.peers, sessionID)
	h.mu.Unlock()
}

// subscribe moves the session onto the room topic, detaching it from any
// previous room first.
func (h *hub) subscribe(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(sessionID)
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[roomID] = members
	}
	members[sessionID] = struct{}{}
	h.inRoom[sessionID] = roomID
}

func (h *hub) unsubscribe(sessionID string) {
	h.mu.Lock()
	h.detachLocked(sessionID)
	h.mu.Unlock()
}

func (h *hub) detachLocked(sessionID string) {
	roomID, ok := h.inRoom[sessionID]
	if !ok {
		return
	}
	delete(h.inRoom, sessionID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *hub) roomPeers(roomID string) []*wsPeer {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[roomID]
	peers := make([]*wsPeer, 0, len(members))
	for sessionID := range members {
		if peer, ok := h.peers[sessionID]; ok {
			peers = append(peers, peer)
		}
	}
	return peers
}

func (h *hub) allPeers() []*wsPeer {
	h.mu.Lock()
	defer h.mu.Unlock()

	peers := make([]*wsPeer, 0, len(h.peers))
	for _, peer := range h.peers {
		peers = append(peers, peer)
	}
	return peers
}
