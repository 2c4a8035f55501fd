package handler

import (
	"context"      // background context for post-commit event publishing
	"database/sql" // for sentinel errors returned from repository
	"errors"       // for errors.Is comparisons
	"net/http"     // HTTP status codes
	"time"         // working with timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/locker-reservation/internal/model"
	"github.com/iliyamo/locker-reservation/internal/queue"
	"github.com/iliyamo/locker-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/locker-reservation/internal/service"
)

// ReservationHandler owns the reservation lifecycle and the locker
// consistency rule: a locker's status is "reserved" exactly while one
// active reservation points at it.  Every transition that changes
// is_active updates the locker status inside the same transaction, and
// the locker row is locked (SELECT ... FOR UPDATE) before its status
// is read, so concurrent create attempts on the same locker end with
// exactly one success.  Methods assume JWT authentication has already
// been performed by middleware and return 401 when the user ID cannot
// be extracted from the context.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo // reservation rows and details
	Lockers      *repository.LockerRepo      // locker rows and status flips
}

// NewReservationHandler constructs a ReservationHandler with the
// provided repositories.  All dependencies must be non-nil.
func NewReservationHandler(reservations *repository.ReservationRepo, lockers *repository.LockerRepo) *ReservationHandler {
	if reservations == nil || lockers == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Lockers: lockers}
}

type createReservationReq struct {
	LockerID      uint64    `json:"locker_id"`
	ReservedUntil time.Time `json:"reserved_until"`
}

// Create handles POST /v1/reservations.  The request body carries
// locker_id and reserved_until (RFC3339, must be in the future).  The
// target locker must be "available"; "reserved" and "maintenance"
// both yield a 400 conflict and leave all state unchanged.  On success
// it responds 201 with the reservation and its nested locker and user
// details.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.LockerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "locker_id is required"})
	}
	if !req.ReservedUntil.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reserved_until must be a future timestamp"})
	}

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the locker row before reading its status; concurrent creates
	// on the same locker serialize here.
	locker, err := h.Lockers.GetForUpdateTx(ctx, tx, req.LockerID)
	if err != nil {
		if errors.Is(err, repository.ErrLockerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "locker not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load locker"})
	}
	if locker.Status != model.LockerAvailable {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "locker is not available"})
	}

	res := model.Reservation{
		UserID:        userID,
		LockerID:      req.LockerID,
		ReservedUntil: req.ReservedUntil.UTC(),
		IsActive:      true,
	}
	if err := h.Reservations.CreateTx(ctx, tx, &res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	if err := h.Lockers.UpdateStatusTx(ctx, tx, req.LockerID, model.LockerReserved); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update locker status"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.publishEvent(queue.ReservationCreatedQueue, res, locker)

	detail, err := h.Reservations.GetDetail(ctx, res.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	return c.JSON(http.StatusCreated, detail)
}

// List handles GET /v1/reservations.  Admins see every reservation;
// everyone else sees only their own.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	var details []repository.ReservationDetail
	if getRole(c).Can(model.PermViewAllReservations) {
		details, err = h.Reservations.ListAll(ctx)
	} else {
		details, err = h.Reservations.ListByUser(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// Get handles GET /v1/reservations/:id.  Only the owner or an admin
// may view a reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	detail, err := h.Reservations.GetDetail(c.Request().Context(), resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if detail.UserID != userID && !getRole(c).Can(model.PermViewAllReservations) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Release handles PUT /v1/reservations/:id/release.  The owner or an
// admin deactivates the reservation; the locker becomes available in
// the same transaction.  Releasing an already-inactive reservation is
// a 400 conflict and changes nothing.
func (h *ReservationHandler) Release(c echo.Context) error {
	res, locker, done := h.transition(c, func(ctx context.Context, tx *sql.Tx, res model.Reservation) (echoError, error) {
		if !res.IsActive {
			return echoError{http.StatusBadRequest, "reservation already released"}, repository.ErrConflict
		}
		if err := h.Reservations.SetActiveTx(ctx, tx, res.ID, false); err != nil {
			return echoError{http.StatusInternalServerError, "failed to release reservation"}, err
		}
		if err := h.Lockers.UpdateStatusTx(ctx, tx, res.LockerID, model.LockerAvailable); err != nil {
			return echoError{http.StatusInternalServerError, "failed to update locker status"}, err
		}
		return echoError{}, nil
	})
	if done {
		return nil
	}
	h.publishEvent(queue.ReservationReleasedQueue, res, locker)
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation released successfully"})
}

// Destroy handles DELETE /v1/reservations/:id.  The owner or an admin
// removes the reservation row; the locker is freed regardless of the
// reservation's prior is_active value (idempotent free-on-delete).
func (h *ReservationHandler) Destroy(c echo.Context) error {
	res, locker, done := h.transition(c, func(ctx context.Context, tx *sql.Tx, res model.Reservation) (echoError, error) {
		if err := h.Reservations.DeleteTx(ctx, tx, res.ID); err != nil {
			return echoError{http.StatusInternalServerError, "failed to delete reservation"}, err
		}
		if err := h.Lockers.UpdateStatusTx(ctx, tx, res.LockerID, model.LockerAvailable); err != nil {
			return echoError{http.StatusInternalServerError, "failed to update locker status"}, err
		}
		return echoError{}, nil
	})
	if done {
		return nil
	}
	h.publishEvent(queue.ReservationReleasedQueue, res, locker)
	return c.NoContent(http.StatusNoContent)
}

// echoError pairs an HTTP status with a message for deferred writing.
type echoError struct {
	status  int
	message string
}

// transition implements the shared shell of Release and Destroy: load
// the reservation under a row lock, enforce the owner-or-admin rule,
// run the state change, and commit.  It returns done=true when a
// response has already been written to the client; otherwise the
// caller writes the success response and publishes the event for the
// returned reservation and locker.
func (h *ReservationHandler) transition(c echo.Context, apply func(context.Context, *sql.Tx, model.Reservation) (echoError, error)) (model.Reservation, model.Locker, bool) {
	userID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.Reservation{}, model.Locker{}, true
	}
	resID, err := parseID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
		return model.Reservation{}, model.Locker{}, true
	}

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
		return model.Reservation{}, model.Locker{}, true
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetForUpdateTx(ctx, tx, resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
		}
		return model.Reservation{}, model.Locker{}, true
	}
	if res.UserID != userID && !getRole(c).Can(model.PermViewAllReservations) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
		return model.Reservation{}, model.Locker{}, true
	}

	locker, err := h.Lockers.GetForUpdateTx(ctx, tx, res.LockerID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load locker"})
		return model.Reservation{}, model.Locker{}, true
	}

	if ee, err := apply(ctx, tx, res); err != nil {
		_ = c.JSON(ee.status, echo.Map{"error": ee.message})
		return model.Reservation{}, model.Locker{}, true
	}
	if err := tx.Commit(); err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
		return model.Reservation{}, model.Locker{}, true
	}
	committed = true
	return res, locker, false
}

// publishEvent sends a reservation lifecycle event in the background.
// Publishing is best effort: a broker outage never fails the request.
func (h *ReservationHandler) publishEvent(queueName string, res model.Reservation, locker model.Locker) {
	ev := queue.ReservationEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		LockerID:      locker.ID,
		LockerNumber:  locker.LockerNumber,
		Location:      locker.Location,
		ReservedUntil: res.ReservedUntil.UTC().Format(time.RFC3339),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if queueName == queue.ReservationCreatedQueue {
			_ = queue_publisher.PublishReservationCreated(ctx, ev)
		} else {
			_ = queue_publisher.PublishReservationReleased(ctx, ev)
		}
	}()
}
