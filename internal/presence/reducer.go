// Package presence counts anonymous viewers per billboard. Counts are always
// recomputed from the latest full snapshot, never incremented.
package presence

import (
	"slices"

	"billboards/pkg/model"
)

const channelPrefix = "billboard:"

// ChannelName is the presence channel of a billboard.
func ChannelName(billboardID string) string {
	return channelPrefix + billboardID
}

// Snapshot is the entry set of a channel as of sequence Seq.
type Snapshot struct {
	Seq     int64
	Entries []model.PresenceEntry
}

// Reduce replaces snapshot with the entry set carried by event. Every kind of
// event carries the full set, so sync, join and leave reduce the same way.
// Events that are not newer than snapshot are stale and reported as not
// applied.
func Reduce(snapshot Snapshot, event model.PresenceEvent) (Snapshot, bool) {
	if snapshot.Seq > 0 && event.Seq <= snapshot.Seq {
		return snapshot, false
	}
	return Snapshot{Seq: event.Seq, Entries: slices.Clone(event.Entries)}, true
}

// Count returns the number of distinct viewers in entries.
func Count(entries []model.PresenceEntry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.ViewerID] = struct{}{}
	}
	return len(seen)
}
