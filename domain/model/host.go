package model

import "time"

// HostRecord is the public record of the party currently hosting a room's
// inference backend. At most one exists per room; it is only written while
// the room's claim lock is held, and its key carries a TTL so a crashed
// host simply ages out.
type HostRecord struct {
	HostAddr      string  `json:"hostAddr"`
	RecvAddr      string  `json:"recvAddr"`
	RatePerK      float64 `json:"ratePerThousand"`
	ModelEndpoint string  `json:"modelEndpoint"`
	ModelToken    string  `json:"modelToken,omitempty"`
	ModelID       string  `json:"modelId"`
	Connected     bool    `json:"connected"`
	LastSeen      int64   `json:"lastSeenAt"` // unix milliseconds
}

// Online reports whether the record should be treated as a live host. The
// storage TTL is the real reaper; this guards against a record whose
// heartbeat stalled but whose key has not expired yet.
func (h *HostRecord) Online(ttl time.Duration) bool {
	if h == nil || !h.Connected {
		return false
	}
	lastSeen := time.UnixMilli(h.LastSeen)
	return time.Since(lastSeen) <= ttl
}

// Public returns a copy safe to expose in room state responses.
func (h HostRecord) Public() HostRecord {
	h.ModelToken = ""
	return h
}
