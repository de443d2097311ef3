package presence

import (
	"context"
	"sync"
	"time"

	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/google/uuid"
)

const leaveTimeout = 5 * time.Second

// Aggregator fans presence of every watched billboard out to local sessions.
// Each billboard with at least one session owns one subscription goroutine,
// which also sweeps stale viewers every heartbeat.
type Aggregator struct {
	channel   Channel
	heartbeat time.Duration
	log       *logger.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

func NewAggregator(channel Channel, heartbeat time.Duration, log *logger.Logger) *Aggregator {
	return &Aggregator{
		channel:   channel,
		heartbeat: heartbeat,
		log:       log,
		rooms:     make(map[string]*room),
	}
}

// Join tracks a new anonymous viewer on billboardID. It never fails: when the
// transport is unreachable the session is returned with Degraded set and a
// single zero count.
func (a *Aggregator) Join(ctx context.Context, billboardID string) *Session {
	s := &Session{
		BillboardID: billboardID,
		ViewerID:    uuid.NewString(),
		JoinedAt:    time.Now().UTC(),
		channel:     ChannelName(billboardID),
		agg:         a,
		updates:     make(chan model.ViewerCount, 1),
		stop:        make(chan struct{}),
	}

	if err := a.join(ctx, s); err != nil {
		a.log.Warn("Presence unavailable, serving degraded viewer count",
			"billboard_id", billboardID,
			"viewer_id", s.ViewerID,
			"error", err,
		)
		s.degrade()
		return s
	}

	a.log.Debug("Viewer joined",
		"billboard_id", billboardID,
		"viewer_id", s.ViewerID,
	)
	return s
}

// Count reads the current viewer count without joining.
func (a *Aggregator) Count(ctx context.Context, billboardID string) model.ViewerCount {
	snapshot, err := a.channel.Snapshot(ctx, ChannelName(billboardID))
	if err != nil {
		a.log.Warn("Presence unavailable, serving degraded viewer count",
			"billboard_id", billboardID,
			"error", err,
		)
		return model.ViewerCount{BillboardID: billboardID, Degraded: true}
	}
	return model.ViewerCount{BillboardID: billboardID, Viewers: Count(snapshot.Entries)}
}

func (a *Aggregator) join(ctx context.Context, s *Session) error {
	r, err := a.acquire(ctx, s)
	if err != nil {
		return err
	}
	s.room = r

	// Track may fail after the write committed, so Leave always untracks.
	s.tracked = true
	entry := model.PresenceEntry{ViewerID: s.ViewerID, JoinedAt: s.JoinedAt}
	if err := a.channel.Track(ctx, s.channel, entry); err != nil {
		return err
	}

	snapshot, err := a.channel.Snapshot(ctx, s.channel)
	if err != nil {
		return err
	}
	r.apply(snapshot)
	r.welcome(s)

	go s.heartbeatLoop()
	return nil
}

// acquire adds s to the room of its billboard, opening one when needed. The
// subscribe call runs outside a.mu; when two joins race to open the same
// room the loser closes its subscription and joins the winner's room.
func (a *Aggregator) acquire(ctx context.Context, s *Session) (*room, error) {
	if r := a.existing(s); r != nil {
		return r, nil
	}

	sub, err := a.channel.Subscribe(ctx, s.channel)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if r, ok := a.rooms[s.channel]; ok {
		r.add(s)
		a.mu.Unlock()
		a.closeSubscription(s.BillboardID, sub)
		return r, nil
	}
	r := &room{
		billboardID: s.BillboardID,
		channel:     s.channel,
		sub:         sub,
		sessions:    make(map[*Session]struct{}),
	}
	r.add(s)
	a.rooms[s.channel] = r
	a.mu.Unlock()

	go a.run(r)
	return r, nil
}

func (a *Aggregator) existing(s *Session) *room {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.rooms[s.channel]
	if !ok {
		return nil
	}
	r.add(s)
	return r
}

func (a *Aggregator) release(r *room, s *Session) {
	a.mu.Lock()
	if r.remove(s) > 0 {
		a.mu.Unlock()
		return
	}
	if a.rooms[s.channel] == r {
		delete(a.rooms, s.channel)
	}
	a.mu.Unlock()

	a.closeSubscription(r.billboardID, r.sub)
}

func (a *Aggregator) closeSubscription(billboardID string, sub Subscription) {
	if err := sub.Close(); err != nil {
		a.log.Warn("Failed to close presence subscription",
			"billboard_id", billboardID,
			"error", err,
		)
	}
}

func (a *Aggregator) run(r *room) {
	ticker := time.NewTicker(a.heartbeat)
	defer ticker.Stop()

	events := r.sub.Events()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				a.log.Debug("Presence subscription ended", "billboard_id", r.billboardID)
				return
			}
			r.apply(event)
		case <-ticker.C:
			a.sweep(r)
		}
	}
}

// sweep reads a fresh snapshot so viewers of a crashed instance are pruned
// and announced even when nobody joins or leaves.
func (a *Aggregator) sweep(r *room) {
	ctx, cancel := context.WithTimeout(context.Background(), a.heartbeat)
	defer cancel()

	snapshot, err := a.channel.Snapshot(ctx, r.channel)
	if err != nil {
		a.log.Warn("Presence sweep failed",
			"billboard_id", r.billboardID,
			"error", err,
		)
		return
	}
	r.apply(snapshot)
}

func (a *Aggregator) roomCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rooms)
}

type room struct {
	billboardID string
	channel     string
	sub         Subscription

	mu       sync.Mutex
	snapshot Snapshot
	sessions map[*Session]struct{}
}

func (r *room) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = struct{}{}
}

func (r *room) remove(s *Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
	return len(r.sessions)
}

// apply reduces event into the room snapshot and pushes the new count to every
// session. Stale events change nothing.
func (r *room) apply(event model.PresenceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, applied := Reduce(r.snapshot, event)
	if !applied {
		return
	}
	r.snapshot = next
	count := r.count()
	for s := range r.sessions {
		s.deliver(count)
	}
}

// welcome sends the current count to a session whose own snapshot may have
// been older than what the room already holds.
func (r *room) welcome(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s]; ok {
		s.deliver(r.count())
	}
}

func (r *room) count() model.ViewerCount {
	return model.ViewerCount{BillboardID: r.billboardID, Viewers: Count(r.snapshot.Entries)}
}

// Session is one viewer watching one billboard.
type Session struct {
	BillboardID string
	ViewerID    string
	JoinedAt    time.Time
	Degraded    bool

	channel   string
	agg       *Aggregator
	room      *room
	tracked   bool
	updates   chan model.ViewerCount
	stop      chan struct{}
	leaveOnce sync.Once
}

// Updates streams the latest viewer count. Stale values are dropped when the
// reader falls behind. The channel is closed by Leave.
func (s *Session) Updates() <-chan model.ViewerCount {
	return s.updates
}

// Leave stops tracking the viewer. It is safe to call more than once and
// uses its own timeout so a cancelled request still removes the viewer.
func (s *Session) Leave() {
	s.leaveOnce.Do(func() {
		close(s.stop)

		if s.tracked {
			ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
			defer cancel()
			if err := s.agg.channel.Untrack(ctx, s.channel, s.ViewerID); err != nil {
				s.agg.log.Warn("Failed to untrack viewer",
					"billboard_id", s.BillboardID,
					"viewer_id", s.ViewerID,
					"error", err,
				)
			}
		}
		if s.room != nil {
			s.agg.release(s.room, s)
		}
		close(s.updates)

		s.agg.log.Debug("Viewer left",
			"billboard_id", s.BillboardID,
			"viewer_id", s.ViewerID,
		)
	})
}

func (s *Session) degrade() {
	s.Degraded = true
	if s.room != nil {
		s.agg.release(s.room, s)
		s.room = nil
	}
	s.deliver(model.ViewerCount{BillboardID: s.BillboardID, Degraded: true})
}

// deliver replaces any unread count with c.
func (s *Session) deliver(c model.ViewerCount) {
	select {
	case s.updates <- c:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- c:
	default:
	}
}

func (s *Session) heartbeatLoop() {
	ticker := time.NewTicker(s.agg.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.agg.heartbeat)
			err := s.agg.channel.Heartbeat(ctx, s.channel, s.ViewerID)
			cancel()
			if err != nil {
				s.agg.log.Warn("Presence heartbeat failed",
					"billboard_id", s.BillboardID,
					"viewer_id", s.ViewerID,
					"error", err,
				)
			}
		}
	}
}
