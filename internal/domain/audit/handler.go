package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

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
	g := api.Group("/admin", auth.RequireRole(auth.RoleSuperAdmin))
	g.GET("/audit-log", h.List)
}

func (h *Handler) List(c echo.Context) error {
	f := Filters{
		UserID:   c.QueryParam("user_id"),
		Resource: c.QueryParam("resource"),
		Action:   c.QueryParam("action"),
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
