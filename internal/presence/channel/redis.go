// Package channel implements the presence transport on Redis. Members of a
// channel live in a sorted set scored by their last heartbeat, join times in a
// hash, and every change publishes the full entry set, stamped with a per
// channel sequence, on the channel itself.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"billboards/internal/presence"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "presence:"
	eventsBuffer = 32
)

type RedisChannel struct {
	client     *redis.Client
	staleAfter time.Duration
	log        *logger.Logger
}

func NewRedisChannel(client *redis.Client, staleAfter time.Duration, log *logger.Logger) *RedisChannel {
	return &RedisChannel{
		client:     client,
		staleAfter: staleAfter,
		log:        log,
	}
}

func membersKey(channel string) string {
	return keyPrefix + channel
}

func joinedKey(channel string) string {
	return keyPrefix + channel + ":joined"
}

// seqKey never expires: a reset sequence would make every later snapshot look
// stale to rooms that outlived the member keys.
func seqKey(channel string) string {
	return keyPrefix + channel + ":seq"
}

func (c *RedisChannel) Track(ctx context.Context, channel string, entry model.PresenceEntry) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, membersKey(channel), redis.Z{Score: score(time.Now()), Member: entry.ViewerID})
		pipe.HSet(ctx, joinedKey(channel), entry.ViewerID, entry.JoinedAt.UTC().Format(time.RFC3339Nano))
		c.expire(ctx, pipe, channel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to track viewer: %w", err)
	}
	_, err = c.broadcast(ctx, channel, model.PresenceJoin)
	return err
}

// Heartbeat refreshes the viewer score. A viewer pruned after a long pause is
// tracked again with the current time as its join time and announced.
func (c *RedisChannel) Heartbeat(ctx context.Context, channel string, viewerID string) error {
	now := time.Now()
	var added *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.ZAdd(ctx, membersKey(channel), redis.Z{Score: score(now), Member: viewerID})
		pipe.HSetNX(ctx, joinedKey(channel), viewerID, now.UTC().Format(time.RFC3339Nano))
		c.expire(ctx, pipe, channel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to refresh viewer: %w", err)
	}
	if added.Val() > 0 {
		c.log.Debug("Viewer tracked again after pruning", "channel", channel, "viewer_id", viewerID)
		_, err = c.broadcast(ctx, channel, model.PresenceJoin)
		return err
	}
	return nil
}

func (c *RedisChannel) Untrack(ctx context.Context, channel string, viewerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, membersKey(channel), viewerID)
		pipe.HDel(ctx, joinedKey(channel), viewerID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to untrack viewer: %w", err)
	}
	_, err = c.broadcast(ctx, channel, model.PresenceLeave)
	return err
}

// Snapshot prunes viewers whose heartbeat is older than staleAfter, which
// covers abnormal disconnects, and returns the remaining entries. Pruning
// announces a leave to subscribers.
func (c *RedisChannel) Snapshot(ctx context.Context, channel string) (model.PresenceEvent, error) {
	pruned, err := c.prune(ctx, channel)
	if err != nil {
		return model.PresenceEvent{}, err
	}
	if pruned > 0 {
		c.log.Debug("Pruned stale viewers", "channel", channel, "count", pruned)
		return c.broadcast(ctx, channel, model.PresenceLeave)
	}
	return c.read(ctx, channel, model.PresenceSync)
}

func (c *RedisChannel) Subscribe(ctx context.Context, channel string) (presence.Subscription, error) {
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &subscription{
		pubsub: pubsub,
		events: make(chan model.PresenceEvent, eventsBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump(c.log)
	return sub, nil
}

func (c *RedisChannel) prune(ctx context.Context, channel string) (int, error) {
	cutoff := time.Now().Add(-c.staleAfter)
	stale, err := c.client.ZRangeByScore(ctx, membersKey(channel), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatFloat(score(cutoff), 'f', 0, 64),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to find stale viewers: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	members := make([]any, len(stale))
	for i, id := range stale {
		members[i] = id
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, membersKey(channel), members...)
		pipe.HDel(ctx, joinedKey(channel), stale...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale viewers: %w", err)
	}
	return len(stale), nil
}

// read takes the next sequence number and the member set in one MULTI, so a
// higher sequence always describes a later state.
func (c *RedisChannel) read(ctx context.Context, channel string, kind model.PresenceEventKind) (model.PresenceEvent, error) {
	var (
		seq    *redis.IntCmd
		ids    *redis.StringSliceCmd
		joined *redis.MapStringStringCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		seq = pipe.Incr(ctx, seqKey(channel))
		ids = pipe.ZRange(ctx, membersKey(channel), 0, -1)
		joined = pipe.HGetAll(ctx, joinedKey(channel))
		return nil
	})
	if err != nil {
		return model.PresenceEvent{}, fmt.Errorf("failed to list viewers: %w", err)
	}

	return model.PresenceEvent{
		Kind:    kind,
		Channel: channel,
		Seq:     seq.Val(),
		Entries: buildEntries(ids.Val(), joined.Val()),
	}, nil
}

// broadcast publishes a fresh snapshot. Publishes may reach subscribers out of
// order; the sequence lets them discard the older one.
func (c *RedisChannel) broadcast(ctx context.Context, channel string, kind model.PresenceEventKind) (model.PresenceEvent, error) {
	event, err := c.read(ctx, channel, kind)
	if err != nil {
		return model.PresenceEvent{}, err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return model.PresenceEvent{}, fmt.Errorf("failed to encode presence event: %w", err)
	}
	if err := c.client.Publish(ctx, channel, payload).Err(); err != nil {
		return model.PresenceEvent{}, fmt.Errorf("failed to publish presence event: %w", err)
	}
	return event, nil
}

func (c *RedisChannel) expire(ctx context.Context, pipe redis.Pipeliner, channel string) {
	ttl := 2 * c.staleAfter
	pipe.Expire(ctx, membersKey(channel), ttl)
	pipe.Expire(ctx, joinedKey(channel), ttl)
}

// score is the sorted set score for t, in unix milliseconds.
func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// buildEntries pairs member ids with their join times. A missing or
// unreadable join time falls back to the zero time.
func buildEntries(ids []string, joined map[string]string) []model.PresenceEntry {
	entries := make([]model.PresenceEntry, 0, len(ids))
	for _, id := range ids {
		entry := model.PresenceEntry{ViewerID: id}
		if t, err := time.Parse(time.RFC3339Nano, joined[id]); err == nil {
			entry.JoinedAt = t
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].JoinedAt.Before(entries[j].JoinedAt)
	})
	return entries
}

type subscription struct {
	pubsub    *redis.PubSub
	events    chan model.PresenceEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) Events() <-chan model.PresenceEvent {
	return s.events
}

func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

func (s *subscription) pump(log *logger.Logger) {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		event, err := decodeEvent(msg.Payload)
		if err != nil {
			log.Warn("Dropping malformed presence event", "channel", msg.Channel, "error", err)
			continue
		}
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}

func decodeEvent(payload string) (model.PresenceEvent, error) {
	var event model.PresenceEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return model.PresenceEvent{}, err
	}
	return event, nil
}
