package events

import "time"

// EventType defines the type of event
type EventType string

const (
	EventHostClaimed     EventType = "room.host_claimed"
	EventHostReleased    EventType = "room.host_released"
	EventMessagePosted   EventType = "room.message_posted"
	EventMessageSettled  EventType = "room.message_settled"
	EventSettlementNoted EventType = "room.settlement_flagged"
)

// Event is published after a committed mutation. Notifications are
// advisory: no correctness depends on anyone receiving them.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RoomID    string         `json:"room_id,omitempty"`
	Addr      string         `json:"addr,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}
