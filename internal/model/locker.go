package model

import "time"

// LockerStatus enumerates the states a locker can be in.  The status
// column is the single source of truth for whether a locker can be
// reserved right now.
type LockerStatus string

const (
    LockerAvailable   LockerStatus = "available"   // free to reserve
    LockerReserved    LockerStatus = "reserved"    // held by an active reservation
    LockerMaintenance LockerStatus = "maintenance" // administratively blocked
)

// ValidLockerStatus reports whether s is one of the three known
// locker states.  Repositories and handlers reject anything else.
func ValidLockerStatus(s string) bool {
    switch LockerStatus(s) {
    case LockerAvailable, LockerReserved, LockerMaintenance:
        return true
    }
    return false
}

// Locker describes a physical storage unit.  Lockers are uniquely
// identified by their locker_number; location is free-form text such
// as "Building A - Floor 1".
type Locker struct {
    ID           uint64       // lockers.id
    LockerNumber string       // lockers.locker_number
    Location     string       // lockers.location
    Status       LockerStatus // lockers.status
    CreatedAt    time.Time    // lockers.created_at
    UpdatedAt    time.Time    // lockers.updated_at
}
