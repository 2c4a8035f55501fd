// Package repository implements data access for users, tokens, lockers
// and reservations on top of database/sql.  Sentinel errors let the
// handlers distinguish failure scenarios without inspecting driver
// error strings.
package repository

import "errors"

// ErrConflict is returned when an operation cannot be performed
// because of conflicting state, such as creating a reservation on
// a locker whose status is not "available" or releasing a
// reservation twice. Handlers translate this into an HTTP 400
// response with a human-readable message.
var ErrConflict = errors.New("conflict")
