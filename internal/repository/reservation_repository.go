package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/locker-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  A
// reservation ties a user to a locker for a bounded time window; the
// is_active flag together with the locker's status column forms the
// consistency rule enforced by the handlers: a locker is "reserved"
// exactly while one active reservation points at it.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// LockerDetails is the nested locker representation embedded in
// reservation responses.
type LockerDetails struct {
	ID           uint64    `json:"id"`
	LockerNumber string    `json:"locker_number"`
	Location     string    `json:"location"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserDetails is the nested owner representation embedded in
// reservation responses.  The password hash is never exposed.
type UserDetails struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ReservationDetail encapsulates a reservation along with its locker
// and owner.  It is the shape returned to API clients for listing and
// detail endpoints.
type ReservationDetail struct {
	ID            uint64        `json:"id"`
	UserID        uint64        `json:"user_id"`
	LockerID      uint64        `json:"locker_id"`
	ReservedAt    time.Time     `json:"reserved_at"`
	ReservedUntil time.Time     `json:"reserved_until"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LockerDetails LockerDetails `json:"locker_details"`
	UserDetails   UserDetails   `json:"user_details"`
}

const detailQuery = `SELECT r.id, r.user_id, r.locker_id, r.reserved_at, r.reserved_until, r.is_active,
                            r.created_at, r.updated_at,
                            l.id, l.locker_number, l.location, l.status, l.created_at, l.updated_at,
                            u.id, u.username, u.email, u.first_name, u.last_name, u.role, u.created_at
                     FROM reservations r
                     JOIN lockers l ON l.id = r.locker_id
                     JOIN users u ON u.id = r.user_id`

func scanDetail(row interface {
	Scan(dest ...interface{}) error
}) (ReservationDetail, error) {
	var d ReservationDetail
	err := row.Scan(
		&d.ID, &d.UserID, &d.LockerID, &d.ReservedAt, &d.ReservedUntil, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt,
		&d.LockerDetails.ID, &d.LockerDetails.LockerNumber, &d.LockerDetails.Location,
		&d.LockerDetails.Status, &d.LockerDetails.CreatedAt, &d.LockerDetails.UpdatedAt,
		&d.UserDetails.ID, &d.UserDetails.Username, &d.UserDetails.Email,
		&d.UserDetails.FirstName, &d.UserDetails.LastName, &d.UserDetails.Role,
		&d.UserDetails.CreatedAt,
	)
	return d, err
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and timestamps on the
// provided record and returns any error from the database.  The caller
// must commit or rollback the transaction; the matching locker status
// update belongs in the same transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, locker_id, reserved_until, is_active) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.LockerID, res.ReservedUntil, res.IsActive)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, user_id, locker_id, reserved_at, reserved_until, is_active, created_at, updated_at
	             FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(
		&res.ID, &res.UserID, &res.LockerID, &res.ReservedAt, &res.ReservedUntil,
		&res.IsActive, &res.CreatedAt, &res.UpdatedAt,
	)
}

// GetForUpdateTx loads a reservation inside the given transaction with
// a row-level lock so that release and destroy serialize against each
// other.  sql.ErrNoRows is returned when the reservation does not
// exist.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	const q = `SELECT id, user_id, locker_id, reserved_at, reserved_until, is_active, created_at, updated_at
	           FROM reservations WHERE id = ? FOR UPDATE`
	var res model.Reservation
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.UserID, &res.LockerID, &res.ReservedAt, &res.ReservedUntil,
		&res.IsActive, &res.CreatedAt, &res.UpdatedAt,
	)
	return res, err
}

// SetActiveTx flips the is_active flag within a transaction.  The
// caller updates the locker status in the same transaction to keep the
// consistency rule intact.
func (r *ReservationRepo) SetActiveTx(ctx context.Context, tx *sql.Tx, id uint64, active bool) error {
	_, err := tx.ExecContext(ctx, `UPDATE reservations SET is_active = ? WHERE id = ?`, active, id)
	return err
}

// DeleteTx removes a reservation row within a transaction.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}

// GetDetail returns a single reservation with its locker and owner.
// sql.ErrNoRows is returned when the reservation does not exist;
// ownership checks are the caller's concern.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (ReservationDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx, detailQuery+" WHERE r.id = ?", id))
}

// ListAll returns every reservation with locker and owner details,
// newest first.  It backs the admin view.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	return r.list(ctx, detailQuery+" ORDER BY r.reserved_at DESC")
}

// ListByUser returns the reservations owned by a single user, newest
// first.  When no reservations exist, an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	return r.list(ctx, detailQuery+" WHERE r.user_id = ? ORDER BY r.reserved_at DESC", userID)
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...interface{}) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// DB exposes the underlying handle so handlers can begin transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }
