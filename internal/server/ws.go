package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/websocket"
)

var tracer = otel.Tracer("github.com/louisbranch/presenced/internal/server")

// wsClient is the per-connection state: the server-assigned session ID and
// the peer writes go through. Room membership lives in the registry.
type wsClient struct {
	sessionID string
	peer      *wsPeer
}

func (s *service) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	peer := newWSPeer(json.NewEncoder(conn))
	client := &wsClient{sessionID: uuid.NewString(), peer: peer}
	s.hub.register(client.sessionID, peer)
	log.Printf("presence: session connected session=%s", client.sessionID)
	defer s.finishConn(client)

	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
	}

	decoder := json.NewDecoder(conn)
	decodeErrors := 0

	for {
		var msg Message
		if err := decoder.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = peer.write(errorMessage("Invalid message frame"))
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if !s.limiter.Allow(client.sessionID, time.Now()) {
			_ = peer.write(errorMessage("Rate limit exceeded"))
			return
		}

		s.dispatch(ctx, client, msg)
	}
}

func (s *service) dispatch(ctx context.Context, client *wsClient, msg Message) {
	_, span := tracer.Start(ctx, "presence.frame", trace.WithAttributes(
		attribute.String("presence.frame.type", string(msg.Type)),
		attribute.String("presence.session_id", client.sessionID),
	))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("presence: panic handling %s frame session=%s: %v", msg.Type, client.sessionID, r)
			_ = client.peer.write(errorMessage("Internal server error"))
		}
	}()

	switch msg.Type {
	case MessageJoin:
		s.handleJoin(client, msg)
	case MessageLeave:
		s.handleLeave(client)
	case MessagePing:
		s.handlePing(client)
	case MessageRoomPresence:
		s.handleRoomPresence(client, msg)
	case MessageOnlineUsers:
		s.handleOnlineUsers(client)
	default:
		_ = client.peer.write(errorMessage("Unsupported message type"))
	}
}

func (s *service) handleJoin(client *wsClient, msg Message) {
	username := strings.TrimSpace(msg.Username)
	roomID := strings.TrimSpace(msg.RoomID)
	if reason := validateJoin(username, roomID); reason != "" {
		_ = client.peer.write(errorMessage(reason))
		return
	}

	_, evicted := s.registry.Join(client.sessionID, username, roomID)
	for _, old := range evicted {
		if old.SessionID != client.sessionID {
			s.hub.unsubscribe(old.SessionID)
		}
	}
	s.hub.subscribe(client.sessionID, roomID)
	if _, ok := s.registry.CurrentRoom(client.sessionID); !ok {
		// A concurrent join for the same username evicted this session
		// between Join and subscribe; drop the subscription it no longer
		// owns.
		s.hub.unsubscribe(client.sessionID)
	}
	s.metrics.joins.Inc()
	log.Printf("presence: %s joined room %s session=%s", username, roomID, client.sessionID)

	_ = client.peer.write(ackMessage(fmt.Sprintf("Successfully joined room %s", roomID), username, roomID))
	s.broadcastRoom(roomID, systemMessage(fmt.Sprintf("%s joined the room", username), roomID))
	s.broadcastRoom(roomID, roomPresenceMessage(s.registry.RoomPresence(roomID)))

	for _, old := range evicted {
		if old.RoomID != roomID {
			s.broadcastRoom(old.RoomID, roomPresenceMessage(s.registry.RoomPresence(old.RoomID)))
		}
	}
}

func (s *service) handleLeave(client *wsClient) {
	roomID, ok := s.registry.CurrentRoom(client.sessionID)
	if !ok {
		_ = client.peer.write(errorMessage("You are not in any room"))
		return
	}
	username, _ := s.registry.Username(client.sessionID)
	if !s.registry.Leave(client.sessionID) {
		_ = client.peer.write(errorMessage("Failed to leave room"))
		return
	}
	s.hub.unsubscribe(client.sessionID)
	s.metrics.leaves.Inc()
	log.Printf("presence: %s left room %s session=%s", username, roomID, client.sessionID)

	_ = client.peer.write(ackMessage(fmt.Sprintf("Successfully left room %s", roomID), username, ""))
	s.broadcastRoom(roomID, systemMessage(fmt.Sprintf("%s left the room", username), roomID))
	s.broadcastRoom(roomID, roomPresenceMessage(s.registry.RoomPresence(roomID)))
}

func (s *service) handlePing(client *wsClient) {
	if !s.registry.Heartbeat(client.sessionID) {
		_ = client.peer.write(errorMessage("Session not found"))
		return
	}
	s.metrics.heartbeats.Inc()
	_ = client.peer.write(ackMessage("pong", "", ""))
}

func (s *service) handleRoomPresence(client *wsClient, msg Message) {
	roomID := strings.TrimSpace(msg.RoomID)
	if reason := validateRoomQuery(roomID); reason != "" {
		_ = client.peer.write(errorMessage(reason))
		return
	}
	_ = client.peer.write(roomPresenceMessage(s.registry.RoomPresence(roomID)))
}

func (s *service) handleOnlineUsers(client *wsClient) {
	_ = client.peer.write(onlineUsersMessage(s.registry.AllOnlineUsers()))
}

// finishConn tears down a closed connection. A session that was in a room is
// disconnected from the registry and its departure announced to the room and
// to every connected peer.
func (s *service) finishConn(client *wsClient) {
	roomID, inRoom := s.registry.CurrentRoom(client.sessionID)
	username, _ := s.registry.Username(client.sessionID)
	s.hub.unregister(client.sessionID)
	s.limiter.Forget(client.sessionID)
	if !inRoom {
		return
	}

	s.registry.Disconnect(client.sessionID)
	s.metrics.disconnects.Inc()
	log.Printf("presence: %s disconnected from room %s session=%s", username, roomID, client.sessionID)

	s.broadcastRoom(roomID, systemMessage(fmt.Sprintf("%s disconnected", username), roomID))
	s.broadcastRoom(roomID, roomPresenceMessage(s.registry.RoomPresence(roomID)))
	s.broadcastAll(onlineUsersMessage(s.registry.AllOnlineUsers()))
}

func (s *service) broadcastRoom(roomID string, msg Message) {
	for _, peer := range s.hub.roomPeers(roomID) {
		if err := peer.write(msg); err != nil {
			log.Printf("presence: broadcast %s to room %s: %v", msg.Type, roomID, err)
		}
	}
	s.metrics.broadcasts.Inc()
}

func (s *service) broadcastAll(msg Message) {
	for _, peer := range s.hub.allPeers() {
		if err := peer.write(msg); err != nil {
			log.Printf("presence: broadcast %s: %v", msg.Type, err)
		}
	}
	s.metrics.broadcasts.Inc()
}
