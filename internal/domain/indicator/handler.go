package indicator

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Wendpat-byte/banfora/internal/platform/auth"
	"github.com/Wendpat-byte/banfora/internal/platform/db"
	"github.com/Wendpat-byte/banfora/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/indicators", h.ListIndicators, auth.RequireRole(auth.RoleUser))
	api.POST("/indicators", h.AddIndicator, auth.RequireRole(auth.RoleAdministrator))
}

type addIndicatorRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *Handler) AddIndicator(c echo.Context) error {
	var req addIndicatorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := ParseType(req.Type)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ind, err := h.svc.AddIndicator(c.Request().Context(), req.Name, t)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return echo.NewHTTPError(http.StatusConflict, "indicator already exists")
		case errors.Is(err, db.ErrUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		case errors.Is(err, db.ErrQueryFailed):
			return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, ind)
}

// ListIndicators returns indicators of one type (?type=...) in name order,
// or a paginated list of all indicators when no type is given.
func (h *Handler) ListIndicators(c echo.Context) error {
	if typeParam := c.QueryParam("type"); typeParam != "" {
		t, err := ParseType(typeParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		items, err := h.svc.ListByType(c.Request().Context(), t)
		if err != nil {
			return storageHTTPError(err)
		}
		if items == nil {
			items = []*Indicator{}
		}
		return c.JSON(http.StatusOK, items)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return storageHTTPError(err)
	}
	if items == nil {
		items = []*Indicator{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func storageHTTPError(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
}
