package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/locker-reservation/internal/model"
	"github.com/iliyamo/locker-reservation/internal/repository"
)

// LockerHandler exposes the locker inventory.  The registry is a
// passive store: beyond enum and uniqueness validation no business
// rule lives here.  Reads are open to any authenticated user; writes
// require the manage_lockers permission (enforced by middleware).
type LockerHandler struct {
	Lockers *repository.LockerRepo
}

// NewLockerHandler constructs a LockerHandler and panics if the
// repository is nil.
func NewLockerHandler(lockers *repository.LockerRepo) *LockerHandler {
	if lockers == nil {
		panic("nil repository passed to NewLockerHandler")
	}
	return &LockerHandler{Lockers: lockers}
}

type lockerReq struct {
	LockerNumber string `json:"locker_number"`
	Location     string `json:"location"`
	Status       string `json:"status"`
}

type lockerPatchReq struct {
	LockerNumber *string `json:"locker_number"`
	Location     *string `json:"location"`
	Status       *string `json:"status"`
}

type lockerResp struct {
	ID           uint64    `json:"id"`
	LockerNumber string    `json:"locker_number"`
	Location     string    `json:"location"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toLockerResp(l model.Locker) lockerResp {
	return lockerResp{
		ID:           l.ID,
		LockerNumber: l.LockerNumber,
		Location:     l.Location,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// Create handles POST /v1/lockers.  Status defaults to "available"
// when omitted.
func (h *LockerHandler) Create(c echo.Context) error {
	var req lockerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.LockerNumber = strings.TrimSpace(req.LockerNumber)
	req.Location = strings.TrimSpace(req.Location)
	if req.LockerNumber == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "locker_number and location are required"})
	}
	if req.Status == "" {
		req.Status = string(model.LockerAvailable)
	}
	if !model.ValidLockerStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of available, reserved, maintenance"})
	}

	l := model.Locker{
		LockerNumber: req.LockerNumber,
		Location:     req.Location,
		Status:       model.LockerStatus(req.Status),
	}
	if err := h.Lockers.Create(c.Request().Context(), &l); err != nil {
		if err == repository.ErrLockerExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "locker number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create locker failed"})
	}
	return c.JSON(http.StatusCreated, toLockerResp(l))
}

// List handles GET /v1/lockers with optional ?status= and ?location=
// filters.
func (h *LockerHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !model.ValidLockerStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of available, reserved, maintenance"})
	}
	lockers, err := h.Lockers.List(c.Request().Context(), status, c.QueryParam("location"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load lockers failed"})
	}
	items := make([]lockerResp, 0, len(lockers))
	for _, l := range lockers {
		items = append(items, toLockerResp(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/lockers/:id.
func (h *LockerHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid locker id"})
	}
	l, err := h.Lockers.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrLockerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "locker not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load locker failed"})
	}
	return c.JSON(http.StatusOK, toLockerResp(l))
}

// Update handles PUT /v1/lockers/:id with a full replacement of the
// mutable fields.
func (h *LockerHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid locker id"})
	}
	var req lockerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.LockerNumber = strings.TrimSpace(req.LockerNumber)
	req.Location = strings.TrimSpace(req.Location)
	if req.LockerNumber == "" || req.Location == "" || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "locker_number, location and status are required"})
	}
	if !model.ValidLockerStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of available, reserved, maintenance"})
	}

	l := model.Locker{
		ID:           id,
		LockerNumber: req.LockerNumber,
		Location:     req.Location,
		Status:       model.LockerStatus(req.Status),
	}
	return h.applyUpdate(c, &l)
}

// Patch handles PATCH /v1/lockers/:id, updating only the supplied
// fields.
func (h *LockerHandler) Patch(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid locker id"})
	}
	var req lockerPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	l, err := h.Lockers.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrLockerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "locker not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load locker failed"})
	}
	if req.LockerNumber != nil {
		if v := strings.TrimSpace(*req.LockerNumber); v != "" {
			l.LockerNumber = v
		}
	}
	if req.Location != nil {
		if v := strings.TrimSpace(*req.Location); v != "" {
			l.Location = v
		}
	}
	if req.Status != nil {
		if !model.ValidLockerStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of available, reserved, maintenance"})
		}
		l.Status = model.LockerStatus(*req.Status)
	}
	return h.applyUpdate(c, &l)
}

func (h *LockerHandler) applyUpdate(c echo.Context, l *model.Locker) error {
	if err := h.Lockers.Update(c.Request().Context(), l); err != nil {
		switch err {
		case repository.ErrLockerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "locker not found"})
		case repository.ErrLockerExists:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "locker number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update locker failed"})
	}
	return c.JSON(http.StatusOK, toLockerResp(*l))
}

// Delete handles DELETE /v1/lockers/:id.  Reservations referencing the
// locker are removed by the cascade.
func (h *LockerHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid locker id"})
	}
	if err := h.Lockers.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrLockerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "locker not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete locker failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
