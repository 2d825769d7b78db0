package model

import (
	"fmt"
	"strings"
)

// DefaultRoomID is used whenever a caller omits or blanks the room id.
const DefaultRoomID = "global"

// RoomKeys holds the storage keys every component uses for a room. All key
// derivation goes through ResolveRoomKeys so independent workers agree on
// the namespace.
type RoomKeys struct {
	RoomID      string
	HostKey     string
	LockKey     string
	MessagesKey string
	BalancesKey string
}

func NormalizeRoomID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultRoomID
	}
	return trimmed
}

func ResolveRoomKeys(raw string) RoomKeys {
	roomID := NormalizeRoomID(raw)
	return RoomKeys{
		RoomID:      roomID,
		HostKey:     fmt.Sprintf("room:%s:host", roomID),
		LockKey:     fmt.Sprintf("room:%s:lock", roomID),
		MessagesKey: fmt.Sprintf("room:%s:messages", roomID),
		BalancesKey: fmt.Sprintf("room:%s:balances", roomID),
	}
}
