package sales

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibot/medibot/internal/domain/inventory"
	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/platform/auth"
	"github.com/medibot/medibot/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RolePharmacyAdmin))
	g.POST("/pharmacies/:id/sales", h.Record)
	g.GET("/pharmacies/:id/sales", h.List)
	g.GET("/pharmacies/:id/sales/summary", h.Summary)
	g.GET("/sales/:id", h.Get)
	g.PUT("/sales/:id", h.Edit)
	g.DELETE("/sales/:id", h.Remove)
}

func (h *Handler) Record(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}
	var req RecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sale, err := h.svc.Record(c.Request().Context(), pharmacyID, &req)
	if err != nil {
		return saleError(err)
	}
	return c.JSON(http.StatusCreated, sale)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sale, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pharmacy.ErrNotOwner) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "sale not found")
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *Handler) List(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pharmacyID, from, to, pg.Limit, pg.Offset)
	if err != nil {
		return saleError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Summary(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}
	sum, err := h.svc.Summary(c.Request().Context(), pharmacyID)
	if err != nil {
		return saleError(err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) Edit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req EditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sale, err := h.svc.Edit(c.Request().Context(), id, &req)
	if err != nil {
		return saleError(err)
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *Handler) Remove(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Remove(c.Request().Context(), id); err != nil {
		return saleError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// saleError maps service failures onto HTTP statuses. Selling more than
// is on the shelf is a conflict, not a bad request.
func saleError(err error) error {
	switch {
	case errors.Is(err, pharmacy.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// parseDateRange reads optional from/to query params in YYYY-MM-DD
// form. The to date is pushed to end of day so it is inclusive.
func parseDateRange(c echo.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, errors.New("invalid from date, want YYYY-MM-DD")
		}
		from = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, errors.New("invalid to date, want YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
