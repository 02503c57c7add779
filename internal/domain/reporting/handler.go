package reporting

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/domain/sales"
	"github.com/medibot/medibot/internal/platform/auth"
)

type Handler struct {
	svc   *Service
	sales *sales.Service
}

func NewHandler(svc *Service, salesSvc *sales.Service) *Handler {
	return &Handler{svc: svc, sales: salesSvc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RolePharmacyAdmin))
	g.GET("/reports/definitions", h.Definitions)
	g.GET("/pharmacies/:id/reports/:measure", h.Evaluate)
	g.GET("/pharmacies/:id/sales/export.csv", h.ExportSales)
	g.GET("/sales/:id/invoice.csv", h.ExportInvoice)

	superGroup := api.Group("", auth.RequireRole(auth.RoleSuperAdmin))
	superGroup.GET("/reports/pharmacy-status", h.StatusCounts)
}

func (h *Handler) Definitions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Definitions())
}

func (h *Handler) Evaluate(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Evaluate(c.Request().Context(), c.Param("measure"), pharmacyID, from, to)
	if err != nil {
		if errors.Is(err, pharmacy.ErrNotOwner) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) StatusCounts(c echo.Context) error {
	result, err := h.svc.StatusCounts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// exportPageSize bounds a single CSV export.
const exportPageSize = 10000

func (h *Handler) ExportSales(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items, _, err := h.sales.List(c.Request().Context(), pharmacyID, from, to, exportPageSize, 0)
	if err != nil {
		if errors.Is(err, pharmacy.ErrNotOwner) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var buf bytes.Buffer
	if err := WriteSalesCSV(&buf, items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="sales-%s.csv"`, time.Now().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) ExportInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sale, err := h.sales.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pharmacy.ErrNotOwner) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "sale not found")
	}

	var buf bytes.Buffer
	if err := WriteInvoiceCSV(&buf, sale); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="invoice-%s.csv"`, sale.ID))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

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
