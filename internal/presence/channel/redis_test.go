package channel

import (
	"context"
	"testing"
	"time"

	"billboards/internal/presence"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testChannel = "billboard:b-1"

func newTestChannel(t *testing.T, staleAfter time.Duration) (*RedisChannel, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisChannel(client, staleAfter, logger.Discard()), client
}

func subscribe(t *testing.T, c *RedisChannel) presence.Subscription {
	t.Helper()
	sub, err := c.Subscribe(context.Background(), testChannel)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(func() { _ = sub.Close() })
	return sub
}

func nextEvent(t *testing.T, sub presence.Subscription) model.PresenceEvent {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for presence event")
	}
	return model.PresenceEvent{}
}

func viewerIDs(entries []model.PresenceEntry) map[string]bool {
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.ViewerID] = true
	}
	return ids
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"members", membersKey(testChannel), "presence:billboard:b-1"},
		{"joined", joinedKey(testChannel), "presence:billboard:b-1:joined"},
		{"seq", seqKey(testChannel), "presence:billboard:b-1:seq"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s key = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestBuildEntries(t *testing.T) {
	early := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Minute)

	entries := buildEntries(
		[]string{"late", "early", "missing", "garbage"},
		map[string]string{
			"late":    late.Format(time.RFC3339Nano),
			"early":   early.Format(time.RFC3339Nano),
			"garbage": "not a time",
		},
	)

	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	// entries without a join time sort first
	if entries[2].ViewerID != "early" || entries[3].ViewerID != "late" {
		t.Errorf("expected entries ordered by join time, got %+v", entries)
	}
	if !entries[3].JoinedAt.Equal(late) {
		t.Errorf("join time not parsed: %v", entries[3].JoinedAt)
	}
}

func TestDecodeEvent(t *testing.T) {
	event, err := decodeEvent(`{"kind":"join","channel":"billboard:b-1","seq":7,"entries":[{"viewer_id":"v-1","joined_at":"2026-01-01T10:00:00Z"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.PresenceJoin || event.Seq != 7 || len(event.Entries) != 1 || event.Entries[0].ViewerID != "v-1" {
		t.Errorf("unexpected event: %+v", event)
	}

	if _, err := decodeEvent("{"); err == nil {
		t.Errorf("expected error for malformed payload")
	}
}

func TestScoreIsMilliseconds(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	if got := score(at); got != 1700000000123 {
		t.Errorf("score() = %v", got)
	}
}

func TestTrackAndUntrack_PublishFullSnapshots(t *testing.T) {
	c, _ := newTestChannel(t, time.Minute)
	sub := subscribe(t, c)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"v-1", "v-2"} {
		if err := c.Track(ctx, testChannel, model.PresenceEntry{ViewerID: id, JoinedAt: now}); err != nil {
			t.Fatalf("track %s: %v", id, err)
		}
	}
	first := nextEvent(t, sub)
	second := nextEvent(t, sub)
	if first.Kind != model.PresenceJoin || len(first.Entries) != 1 {
		t.Errorf("first join: %+v", first)
	}
	if second.Kind != model.PresenceJoin || len(second.Entries) != 2 {
		t.Errorf("second join: %+v", second)
	}
	if second.Seq <= first.Seq {
		t.Errorf("sequence must grow: %d then %d", first.Seq, second.Seq)
	}

	if err := c.Untrack(ctx, testChannel, "v-1"); err != nil {
		t.Fatalf("untrack: %v", err)
	}
	left := nextEvent(t, sub)
	if left.Kind != model.PresenceLeave || left.Seq <= second.Seq {
		t.Errorf("leave: %+v", left)
	}
	if ids := viewerIDs(left.Entries); len(ids) != 1 || !ids["v-2"] {
		t.Errorf("expected only v-2 after leave, got %+v", left.Entries)
	}

	snapshot, err := c.Snapshot(ctx, testChannel)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Kind != model.PresenceSync || snapshot.Seq <= left.Seq || len(snapshot.Entries) != 1 {
		t.Errorf("snapshot: %+v", snapshot)
	}
}

func TestSnapshot_PrunesStaleViewersAndAnnouncesLeave(t *testing.T) {
	c, client := newTestChannel(t, time.Minute)
	sub := subscribe(t, c)
	ctx := context.Background()

	if err := c.Track(ctx, testChannel, model.PresenceEntry{ViewerID: "live", JoinedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("track: %v", err)
	}
	nextEvent(t, sub)

	// a viewer whose instance stopped heartbeating an hour ago
	old := time.Now().Add(-time.Hour)
	client.ZAdd(ctx, membersKey(testChannel), redis.Z{Score: score(old), Member: "crashed"})
	client.HSet(ctx, joinedKey(testChannel), "crashed", old.UTC().Format(time.RFC3339Nano))

	snapshot, err := c.Snapshot(ctx, testChannel)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if ids := viewerIDs(snapshot.Entries); len(ids) != 1 || !ids["live"] {
		t.Errorf("expected only the live viewer, got %+v", snapshot.Entries)
	}

	leave := nextEvent(t, sub)
	if leave.Kind != model.PresenceLeave || leave.Seq != snapshot.Seq {
		t.Errorf("expected the prune to be broadcast, got %+v", leave)
	}
	if n := client.HLen(ctx, joinedKey(testChannel)).Val(); n != 1 {
		t.Errorf("join time of pruned viewer kept, %d entries", n)
	}
}

func TestHeartbeat_TracksPrunedViewerAgain(t *testing.T) {
	c, client := newTestChannel(t, time.Minute)
	sub := subscribe(t, c)
	ctx := context.Background()

	if err := c.Heartbeat(ctx, testChannel, "v-1"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	event := nextEvent(t, sub)
	if event.Kind != model.PresenceJoin || !viewerIDs(event.Entries)["v-1"] {
		t.Errorf("expected a join for the pruned viewer, got %+v", event)
	}
	if !event.Entries[0].JoinedAt.After(time.Time{}) {
		t.Errorf("expected a join time to be recorded")
	}

	// a plain refresh announces nothing
	if err := c.Heartbeat(ctx, testChannel, "v-1"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	select {
	case event := <-sub.Events():
		t.Errorf("unexpected event on refresh: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
	if n := client.ZCard(ctx, membersKey(testChannel)).Val(); n != 1 {
		t.Errorf("expected one member, got %d", n)
	}
}

func TestClose_EndsEvents(t *testing.T) {
	c, _ := newTestChannel(t, time.Minute)
	sub, err := c.Subscribe(context.Background(), testChannel)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_ = sub.Close()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("events not closed")
		}
	}
}

func TestAggregator_SweepsViewersOfCrashedInstance(t *testing.T) {
	c, client := newTestChannel(t, 300*time.Millisecond)
	agg := presence.NewAggregator(c, 50*time.Millisecond, logger.Discard())
	ctx := context.Background()

	now := time.Now()
	client.ZAdd(ctx, membersKey(testChannel), redis.Z{Score: score(now), Member: "crashed"})
	client.HSet(ctx, joinedKey(testChannel), "crashed", now.UTC().Format(time.RFC3339Nano))

	s := agg.Join(ctx, "b-1")
	defer s.Leave()
	if s.Degraded {
		t.Fatal("unexpected degraded session")
	}

	timeout := time.After(3 * time.Second)
	sawBoth := false
	for {
		select {
		case count := <-s.Updates():
			if count.Viewers == 2 {
				sawBoth = true
			}
			if count.Viewers == 1 && sawBoth {
				return
			}
		case <-timeout:
			t.Fatalf("crashed viewer never swept (saw both: %v)", sawBoth)
		}
	}
}
