package presence

import (
	"context"

	"billboards/pkg/model"
)

// Channel is the shared transport that tracks who is viewing a billboard.
// Implementations must publish the full entry set on every change and stamp
// each snapshot with a sequence that grows with every read.
type Channel interface {
	Track(ctx context.Context, channel string, entry model.PresenceEntry) error
	Heartbeat(ctx context.Context, channel string, viewerID string) error
	Untrack(ctx context.Context, channel string, viewerID string) error
	// Snapshot drops viewers that stopped heartbeating, announcing a leave
	// when it does, and returns the remaining entries.
	Snapshot(ctx context.Context, channel string) (model.PresenceEvent, error)
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

type Subscription interface {
	// Events is closed once the subscription ends.
	Events() <-chan model.PresenceEvent
	Close() error
}
