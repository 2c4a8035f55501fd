package model

import "time"

// Reservation records a user's time-bounded claim on a locker.  At
// most one reservation with IsActive=true may exist per locker at any
// time; while it exists the locker's status is "reserved".  A
// reservation is never re-pointed at a different locker or user.
type Reservation struct {
    ID            uint64    // reservations.id
    UserID        uint64    // reservations.user_id
    LockerID      uint64    // reservations.locker_id
    ReservedAt    time.Time // reservations.reserved_at
    ReservedUntil time.Time // reservations.reserved_until
    IsActive      bool      // reservations.is_active
    CreatedAt     time.Time // reservations.created_at
    UpdatedAt     time.Time // reservations.updated_at
}
