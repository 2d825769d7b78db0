package model

import "errors"

var (
	// ErrRoomBusy means another claim is mid-flight on the room's lock.
	// Callers may retry; ErrRoomHosted means they must not.
	ErrRoomBusy   = errors.New("room claim lock is busy")
	ErrRoomHosted = errors.New("room already has an active host")

	// ErrHostMismatch is returned when a heartbeat or release names an
	// address other than the stored host's.
	ErrHostMismatch = errors.New("host address mismatch")

	ErrNoActiveHost = errors.New("no active host")

	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrUpstreamUnavailable covers inference transport failures, non-2xx
	// responses, timeouts, and responses with no extractable text.
	ErrUpstreamUnavailable = errors.New("host model unreachable")

	// ErrCorruptHostState marks a stored host record that failed to
	// deserialize; readers treat the host as absent rather than failing.
	ErrCorruptHostState = errors.New("stored host record is corrupt")
)
