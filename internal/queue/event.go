// Package queue defines the reservation event payloads exchanged over
// the message broker and the background consumer that appends them to
// logs/reservation.log.
package queue

// Queue names used for reservation lifecycle events.
const (
	ReservationCreatedQueue  = "reservation.created"
	ReservationReleasedQueue = "reservation.released"
)

// ReservationEvent is published when a reservation is created,
// released or destroyed.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ReservationEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	LockerID      uint64 `json:"locker_id"`
	LockerNumber  string `json:"locker_number"`
	Location      string `json:"location"`
	ReservedUntil string `json:"reserved_until"`
	OccurredAt    string `json:"occurred_at"`
}
