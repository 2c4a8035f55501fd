package repository // repository defines data access for lockers

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions
	"strings"      // strings for duplicate-key detection and filters

	"github.com/iliyamo/locker-reservation/internal/model"
)

// ErrLockerNotFound is returned when a locker lookup yields no rows.
var ErrLockerNotFound = errors.New("locker not found")

// ErrLockerExists is returned when an insert or update collides with
// an existing locker_number.
var ErrLockerExists = errors.New("locker number already exists")

// LockerRepo provides methods to work with lockers in the database.
// The locker row is the only shared mutable resource contended across
// callers; the Tx variants below participate in handler-owned
// transactions so that status flips commit together with reservation
// writes.
type LockerRepo struct {
	db *sql.DB
}

// NewLockerRepo constructs a LockerRepo with the given DB handle.
func NewLockerRepo(db *sql.DB) *LockerRepo {
	return &LockerRepo{db: db}
}

const lockerColumns = "id, locker_number, location, status, created_at, updated_at"

// Create inserts a single locker record. On success the locker's ID
// and timestamps are populated.
func (r *LockerRepo) Create(ctx context.Context, l *model.Locker) error {
	const q = `INSERT INTO lockers (locker_number, location, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, l.LockerNumber, l.Location, string(l.Status))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrLockerExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	return r.db.QueryRowContext(ctx, "SELECT "+lockerColumns+" FROM lockers WHERE id = ?", l.ID).
		Scan(&l.ID, &l.LockerNumber, &l.Location, &l.Status, &l.CreatedAt, &l.UpdatedAt)
}

// GetByID returns a locker by its primary key.  ErrLockerNotFound is
// returned when no such locker exists.
func (r *LockerRepo) GetByID(ctx context.Context, id uint64) (model.Locker, error) {
	var l model.Locker
	err := r.db.QueryRowContext(ctx, "SELECT "+lockerColumns+" FROM lockers WHERE id = ?", id).
		Scan(&l.ID, &l.LockerNumber, &l.Location, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Locker{}, ErrLockerNotFound
	}
	return l, err
}

// GetForUpdateTx loads a locker inside the given transaction with a
// row-level lock (SELECT ... FOR UPDATE).  Callers take this lock
// before reading the status so that concurrent reservation attempts on
// the same locker serialize: exactly one sees "available".
func (r *LockerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Locker, error) {
	var l model.Locker
	err := tx.QueryRowContext(ctx, "SELECT "+lockerColumns+" FROM lockers WHERE id = ? FOR UPDATE", id).
		Scan(&l.ID, &l.LockerNumber, &l.Location, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Locker{}, ErrLockerNotFound
	}
	return l, err
}

// List returns lockers ordered by locker_number.  status and location
// are optional filters; empty strings match everything.  The location
// filter is a substring match.
func (r *LockerRepo) List(ctx context.Context, status, location string) ([]model.Locker, error) {
	q := "SELECT " + lockerColumns + " FROM lockers"
	var (
		conds []string
		args  []interface{}
	)
	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if location != "" {
		conds = append(conds, "location LIKE ?")
		args = append(args, "%"+location+"%")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY locker_number"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lockers := make([]model.Locker, 0)
	for rows.Next() {
		var l model.Locker
		if err := rows.Scan(&l.ID, &l.LockerNumber, &l.Location, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lockers = append(lockers, l)
	}
	return lockers, rows.Err()
}

// Update overwrites locker_number, location and status of an existing
// locker.  ErrLockerNotFound is returned when the id does not exist
// and ErrLockerExists when the new number collides with another row.
func (r *LockerRepo) Update(ctx context.Context, l *model.Locker) error {
	const q = `UPDATE lockers SET locker_number = ?, location = ?, status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, l.LockerNumber, l.Location, string(l.Status), l.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrLockerExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "missing row" from "no column changed".
		var exists uint64
		if err2 := r.db.QueryRowContext(ctx, "SELECT id FROM lockers WHERE id = ?", l.ID).Scan(&exists); err2 == sql.ErrNoRows {
			return ErrLockerNotFound
		}
	}
	return r.db.QueryRowContext(ctx, "SELECT "+lockerColumns+" FROM lockers WHERE id = ?", l.ID).
		Scan(&l.ID, &l.LockerNumber, &l.Location, &l.Status, &l.CreatedAt, &l.UpdatedAt)
}

// UpdateStatusTx sets the status of a locker within the scope of an
// existing transaction.  It is the second half of every reservation
// state transition: the caller flips is_active and the locker status
// in the same atomic unit.
func (r *LockerRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.LockerStatus) error {
	res, err := tx.ExecContext(ctx, `UPDATE lockers SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err2 := tx.QueryRowContext(ctx, "SELECT id FROM lockers WHERE id = ?", id).Scan(&exists); err2 == sql.ErrNoRows {
			return ErrLockerNotFound
		}
	}
	return nil
}

// Delete removes a locker.  Reservations referencing it are removed by
// the ON DELETE CASCADE foreign key.
func (r *LockerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lockers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLockerNotFound
	}
	return nil
}

// DB exposes the underlying handle so handlers can begin transactions.
func (r *LockerRepo) DB() *sql.DB { return r.db }
