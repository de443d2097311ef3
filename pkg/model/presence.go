package model

import "time"

type PresenceEventKind string

const (
	PresenceSync  PresenceEventKind = "sync"
	PresenceJoin  PresenceEventKind = "join"
	PresenceLeave PresenceEventKind = "leave"
)

// PresenceEntry is one anonymous viewer on a billboard channel. It lives only
// as long as the viewing session.
type PresenceEntry struct {
	ViewerID string    `json:"viewer_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// PresenceEvent always carries the full set of currently tracked entries. Seq
// orders snapshots of one channel: a higher Seq was read later.
type PresenceEvent struct {
	Kind    PresenceEventKind `json:"kind"`
	Channel string            `json:"channel"`
	Seq     int64             `json:"seq"`
	Entries []PresenceEntry   `json:"entries"`
}

type ViewerCount struct {
	BillboardID string `json:"billboard_id"`
	Viewers     int    `json:"viewers"`
	Degraded    bool   `json:"degraded,omitempty"`
}
