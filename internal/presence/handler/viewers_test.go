package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"billboards/internal/presence"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// stubChannel keeps members in memory and never publishes; counts reach the
// sessions through the snapshot taken on join.
type stubChannel struct {
	mu      sync.Mutex
	members map[string]model.PresenceEntry
	seq     int64
}

func (c *stubChannel) Track(ctx context.Context, channel string, entry model.PresenceEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members[entry.ViewerID] = entry
	return nil
}

func (c *stubChannel) Heartbeat(ctx context.Context, channel string, viewerID string) error {
	return nil
}

func (c *stubChannel) Untrack(ctx context.Context, channel string, viewerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.members, viewerID)
	return nil
}

func (c *stubChannel) Snapshot(ctx context.Context, channel string) (model.PresenceEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	event := model.PresenceEvent{Kind: model.PresenceSync, Channel: channel, Seq: c.seq}
	for _, e := range c.members {
		event.Entries = append(event.Entries, e)
	}
	return event, nil
}

func (c *stubChannel) Subscribe(ctx context.Context, channel string) (presence.Subscription, error) {
	return &stubSubscription{events: make(chan model.PresenceEvent)}, nil
}

func (c *stubChannel) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

type stubSubscription struct {
	events chan model.PresenceEvent
	once   sync.Once
}

func (s *stubSubscription) Events() <-chan model.PresenceEvent { return s.events }

func (s *stubSubscription) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

func newServer(t *testing.T) (*httptest.Server, *stubChannel) {
	t.Helper()
	ch := &stubChannel{members: map[string]model.PresenceEntry{}}
	agg := presence.NewAggregator(ch, time.Hour, logger.Discard())

	router := httprouter.New()
	NewViewersHandler(agg, []string{"*"}, logger.Discard()).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestCount(t *testing.T) {
	srv, ch := newServer(t)
	ch.members["v-1"] = model.PresenceEntry{ViewerID: "v-1"}
	ch.members["v-2"] = model.PresenceEntry{ViewerID: "v-2"}

	resp, err := http.Get(srv.URL + "/api/v1/billboards/b-1/viewers")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Data model.ViewerCount `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Viewers != 2 || body.Data.BillboardID != "b-1" {
		t.Errorf("unexpected count: %+v", body.Data)
	}
}

func TestStream_JoinAndLeave(t *testing.T) {
	srv, ch := newServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/billboards/b-1/viewers/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var count model.ViewerCount
	if err := conn.ReadJSON(&count); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if count.Viewers != 1 || count.Degraded {
		t.Errorf("expected 1 live viewer, got %+v", count)
	}
	if ch.size() != 1 {
		t.Errorf("expected viewer tracked, got %d", ch.size())
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ch.size() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("viewer still tracked after the socket closed")
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"listed", []string{"https://app.example"}, "https://app.example", true},
		{"not listed", []string{"https://app.example"}, "https://evil.example", false},
		{"no origin", []string{"https://app.example"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(tt.allowed)(req); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}
