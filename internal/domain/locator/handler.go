package locator

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medibot/medibot/internal/platform/geo"
)

// Handler serves the public locator endpoints. No authentication: the
// map is the product's front door.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/locator")
	g.GET("/pharmacies", h.Pharmacies)
	g.GET("/search", h.Search)
	g.GET("/suggestions", h.Suggestions)
	g.GET("/tiles", h.Tiles)
}

func (h *Handler) Pharmacies(c echo.Context) error {
	places, err := h.svc.Pharmacies(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, places)
}

func (h *Handler) Search(c echo.Context) error {
	f := Filters{
		Term:   c.QueryParam("q"),
		SortBy: c.QueryParam("sort"),
	}
	if v := c.QueryParam("min_stock"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_stock")
		}
		f.MinStock = n
	}
	if v := c.QueryParam("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radius_km")
		}
		f.RadiusKM = r
	}

	latStr, lngStr := c.QueryParam("lat"), c.QueryParam("lng")
	if latStr != "" && lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid coordinates")
		}
		f.Origin = &geo.Point{Latitude: lat, Longitude: lng}
	}

	results, err := h.svc.Search(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) Suggestions(c echo.Context) error {
	names, err := h.svc.Suggestions(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, names)
}

func (h *Handler) Tiles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Tiles())
}
