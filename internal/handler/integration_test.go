package handler

// End-to-end handler tests against a real MySQL server, gated on
// LOCKER_TEST_DSN like the repository tests.  They drive the reservation
// lifecycle through the HTTP handlers so that the ownership rules (403
// for a foreign user, admin override) are covered where they live.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/locker-reservation/internal/database"
	"github.com/iliyamo/locker-reservation/internal/model"
	"github.com/iliyamo/locker-reservation/internal/repository"
)

var (
	handlerTestDB   *sql.DB
	handlerTestOnce sync.Once
	handlerTestErr  error
)

func openHandlerTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("LOCKER_TEST_DSN")
	if dsn == "" {
		t.Skip("LOCKER_TEST_DSN not set; skipping MySQL integration tests")
	}
	handlerTestOnce.Do(func() {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			handlerTestErr = err
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			handlerTestErr = err
			return
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			handlerTestErr = err
			return
		}
		handlerTestDB = db
	})
	require.NoError(t, handlerTestErr)
	return handlerTestDB
}

var handlerSeq int64

func uniqueName(prefix string) string {
	handlerSeq++
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), handlerSeq)
}

func TestReservationHandlerLifecycle(t *testing.T) {
	db := openHandlerTestDB(t)
	users := repository.NewUserRepo(db)
	lockers := repository.NewLockerRepo(db)
	reservations := repository.NewReservationRepo(db)
	h := NewReservationHandler(reservations, lockers)
	ctx := context.Background()

	newUser := func(role model.Role) uint64 {
		name := uniqueName("hdl")
		id, err := users.Create(ctx, name, name+"@example.com", "Passw0rd", "", "", role, bcrypt.MinCost)
		require.NoError(t, err)
		return id
	}
	owner := newUser(model.RoleUser)
	stranger := newUser(model.RoleUser)
	admin := newUser(model.RoleAdmin)

	locker := model.Locker{LockerNumber: uniqueName("HL"), Location: "Building C - Floor 2", Status: model.LockerAvailable}
	require.NoError(t, lockers.Create(ctx, &locker))

	until := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	createBody := fmt.Sprintf(`{"locker_id":%d,"reserved_until":%q}`, locker.ID, until)

	// Owner reserves the locker.
	c, rec := newJSONContext(http.MethodPost, "/v1/reservations", createBody)
	c.Set("user_id", owner)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID            uint64 `json:"id"`
		UserID        uint64 `json:"user_id"`
		LockerDetails struct {
			Status string `json:"status"`
		} `json:"locker_details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, owner, created.UserID)

	got, err := lockers.GetByID(ctx, locker.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerReserved, got.Status)

	resPath := fmt.Sprintf("/v1/reservations/%d", created.ID)
	resID := fmt.Sprintf("%d", created.ID)

	// A second create against the same locker conflicts.
	c, rec = newJSONContext(http.MethodPost, "/v1/reservations", createBody)
	c.Set("user_id", stranger)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "locker is not available")

	// A foreign user may neither view nor release the reservation.
	c, rec = newJSONContext(http.MethodGet, resPath, "")
	c.Set("user_id", stranger)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newJSONContext(http.MethodPut, resPath+"/release", "")
	c.Set("user_id", stranger)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Release(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin can view it.
	c, rec = newJSONContext(http.MethodGet, resPath, "")
	c.Set("user_id", admin)
	c.Set("role", string(model.RoleAdmin))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The owner releases; the locker frees up.
	c, rec = newJSONContext(http.MethodPut, resPath+"/release", "")
	c.Set("user_id", owner)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Release(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reservation released successfully")

	got, err = lockers.GetByID(ctx, locker.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerAvailable, got.Status)

	// Releasing twice is a conflict.
	c, rec = newJSONContext(http.MethodPut, resPath+"/release", "")
	c.Set("user_id", owner)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Release(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "reservation already released")

	// After the release the stranger can reserve, and an admin can
	// destroy the reservation outright.
	c, rec = newJSONContext(http.MethodPost, "/v1/reservations", createBody)
	c.Set("user_id", stranger)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	c, rec = newJSONContext(http.MethodDelete, fmt.Sprintf("/v1/reservations/%d", created.ID), "")
	c.Set("user_id", admin)
	c.Set("role", string(model.RoleAdmin))
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", created.ID))
	require.NoError(t, h.Destroy(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, err = lockers.GetByID(ctx, locker.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerAvailable, got.Status)

	_, err = reservations.GetDetail(ctx, created.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReservationCreateMaintenanceLocker(t *testing.T) {
	db := openHandlerTestDB(t)
	users := repository.NewUserRepo(db)
	lockers := repository.NewLockerRepo(db)
	reservations := repository.NewReservationRepo(db)
	h := NewReservationHandler(reservations, lockers)
	ctx := context.Background()

	name := uniqueName("mnt")
	userID, err := users.Create(ctx, name, name+"@example.com", "Passw0rd", "", "", model.RoleUser, bcrypt.MinCost)
	require.NoError(t, err)

	locker := model.Locker{LockerNumber: uniqueName("ML"), Location: "Building B - Floor 1", Status: model.LockerMaintenance}
	require.NoError(t, lockers.Create(ctx, &locker))

	until := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	c, rec := newJSONContext(http.MethodPost, "/v1/reservations", fmt.Sprintf(`{"locker_id":%d,"reserved_until":%q}`, locker.ID, until))
	c.Set("user_id", userID)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "locker is not available")

	// The attempt changes nothing: the locker keeps its maintenance
	// status and no reservation row appears.
	got, err := lockers.GetByID(ctx, locker.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerMaintenance, got.Status)

	mine, err := reservations.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestReservationDestroyPermissionAndIdempotency(t *testing.T) {
	db := openHandlerTestDB(t)
	users := repository.NewUserRepo(db)
	lockers := repository.NewLockerRepo(db)
	reservations := repository.NewReservationRepo(db)
	h := NewReservationHandler(reservations, lockers)
	ctx := context.Background()

	newUser := func() uint64 {
		name := uniqueName("dst")
		id, err := users.Create(ctx, name, name+"@example.com", "Passw0rd", "", "", model.RoleUser, bcrypt.MinCost)
		require.NoError(t, err)
		return id
	}
	owner := newUser()
	stranger := newUser()

	locker := model.Locker{LockerNumber: uniqueName("DL"), Location: "Building C - Floor 3", Status: model.LockerAvailable}
	require.NoError(t, lockers.Create(ctx, &locker))

	until := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	c, rec := newJSONContext(http.MethodPost, "/v1/reservations", fmt.Sprintf(`{"locker_id":%d,"reserved_until":%q}`, locker.ID, until))
	c.Set("user_id", owner)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	resID := fmt.Sprintf("%d", created.ID)

	// A foreign non-admin may not destroy it; state is untouched.
	c, rec = newJSONContext(http.MethodDelete, "/v1/reservations/"+resID, "")
	c.Set("user_id", stranger)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Destroy(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	got, err := lockers.GetByID(ctx, locker.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerReserved, got.Status)
	_, err = reservations.GetDetail(ctx, created.ID)
	require.NoError(t, err)

	// The owner releases first, then destroys the now-inactive
	// reservation.  Destroy still succeeds and the locker stays free.
	c, rec = newJSONContext(http.MethodPut, "/v1/reservations/"+resID+"/release", "")
	c.Set("user_id", owner)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Release(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(http.MethodDelete, "/v1/reservations/"+resID, "")
	c.Set("user_id", owner)
	c.Set("role", string(model.RoleUser))
	c.SetParamNames("id")
	c.SetParamValues(resID)
	require.NoError(t, h.Destroy(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, err = lockers.GetByID(ctx, locker.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerAvailable, got.Status)
	_, err = reservations.GetDetail(ctx, created.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReservationHandlerList(t *testing.T) {
	db := openHandlerTestDB(t)
	users := repository.NewUserRepo(db)
	lockers := repository.NewLockerRepo(db)
	reservations := repository.NewReservationRepo(db)
	h := NewReservationHandler(reservations, lockers)
	ctx := context.Background()

	name := uniqueName("lst")
	userID, err := users.Create(ctx, name, name+"@example.com", "Passw0rd", "", "", model.RoleUser, bcrypt.MinCost)
	require.NoError(t, err)

	locker := model.Locker{LockerNumber: uniqueName("LL"), Location: "Annex D", Status: model.LockerAvailable}
	require.NoError(t, lockers.Create(ctx, &locker))

	until := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	c, rec := newJSONContext(http.MethodPost, "/v1/reservations", fmt.Sprintf(`{"locker_id":%d,"reserved_until":%q}`, locker.ID, until))
	c.Set("user_id", userID)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// A user listing sees only their own reservations.
	c, rec = newJSONContext(http.MethodGet, "/v1/reservations", "")
	c.Set("user_id", userID)
	c.Set("role", string(model.RoleUser))
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Items []repository.ReservationDetail `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, userID, listing.Items[0].UserID)
	assert.Equal(t, locker.LockerNumber, listing.Items[0].LockerDetails.LockerNumber)
}
