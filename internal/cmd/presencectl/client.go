package presencectl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/presenced/internal/platform/timeouts"
	"golang.org/x/net/websocket"
)

// wireMessage mirrors the envelope the presence server speaks. The ctl keeps
// its own copy so it exercises the wire contract rather than server
// internals.
type wireMessage struct {
	Type      string          `json:"type"`
	Username  string          `json:"username,omitempty"`
	RoomID    string          `json:"roomId,omitempty"`
	Content   string          `json:"content,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type wireUserPresence struct {
	Username string    `json:"username"`
	RoomID   string    `json:"roomId"`
	LastSeen time.Time `json:"lastSeen"`
	Status   string    `json:"status"`
}

type wireRoomPresence struct {
	RoomID    string             `json:"roomId"`
	Users     []wireUserPresence `json:"users"`
	UserCount int                `json:"userCount"`
}

type wireStats struct {
	TotalSessions    int            `json:"totalSessions"`
	TotalRooms       int            `json:"totalRooms"`
	TotalOnlineUsers int            `json:"totalOnlineUsers"`
	Rooms            map[string]int `json:"rooms"`
}

func runStats(ctx context.Context, cfg Config, out io.Writer) error {
	base := strings.TrimRight(strings.TrimSpace(cfg.Addr), "/")
	if base == "" {
		return errors.New("server address is required")
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeouts.StatsRequest)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, base+"/stats", nil)
	if err != nil {
		return fmt.Errorf("build stats request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats status %d", resp.StatusCode)
	}

	var stats wireStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}
	renderStats(out, stats)
	return nil
}

func runJoin(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	roomID := strings.TrimSpace(cfg.Room)
	if roomID == "" {
		return errors.New("room is required")
	}
	username := strings.TrimSpace(cfg.User)
	if cfg.Watch {
		username = "watcher-" + uuid.NewString()[:8]
	}
	if username == "" {
		return errors.New("user is required")
	}

	conn, err := dialPresence(cfg.Addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	// done releases the watcher and heartbeat goroutines when runJoin
	// returns for any reason, not just context cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	sender := &wsSender{conn: conn}
	if err := sender.send(wireMessage{Type: "JOIN", Username: username, RoomID: roomID}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	heartbeat := cfg.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 20 * time.Second
	}
	go func() {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sender.send(wireMessage{Type: "PING"}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	decoder := json.NewDecoder(conn)
	for {
		var msg wireMessage
		if err := decoder.Decode(&msg); err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read server message: %w", err)
		}
		renderMessage(out, errOut, msg)
	}
}

func dialPresence(addr string) (*websocket.Conn, error) {
	base := strings.TrimRight(strings.TrimSpace(addr), "/")
	if base == "" {
		return nil, errors.New("server address is required")
	}

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws-presence"
	conn, err := websocket.Dial(wsURL, "", base)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	return conn, nil
}

type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSender) send(msg wireMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.conn).Encode(msg)
}
