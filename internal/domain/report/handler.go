package report

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Wendpat-byte/banfora/internal/platform/auth"
	"github.com/Wendpat-byte/banfora/internal/platform/db"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/bulletins", h.SubmitBulletin, auth.RequireRole(auth.RoleUser))
	api.GET("/surveillance", h.Surveillance, auth.RequireRole(auth.RoleAdministrator))
	api.GET("/dashboard/totals", h.Totals, auth.RequireRole(auth.RoleUser))
}

type submitBulletinRequest struct {
	BulletinNumber string                `json:"bulletin_number"`
	Service        string                `json:"service"`
	PeriodStart    string                `json:"period_start"`
	PeriodEnd      string                `json:"period_end"`
	Diseases       []DiseaseObservation  `json:"diseases"`
	Tropical       []TropicalObservation `json:"tropical"`
	Deaths         []DeathObservation    `json:"deaths"`
}

func (h *Handler) SubmitBulletin(c echo.Context) error {
	var req submitBulletinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub := &BulletinSubmission{
		BulletinNumber: req.BulletinNumber,
		Service:        req.Service,
		Diseases:       req.Diseases,
		Tropical:       req.Tropical,
		Deaths:         req.Deaths,
	}

	var err error
	if req.PeriodStart != "" {
		if sub.PeriodStart, err = time.Parse(dateLayout, req.PeriodStart); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "period_start must be YYYY-MM-DD")
		}
	}
	if req.PeriodEnd != "" {
		if sub.PeriodEnd, err = time.Parse(dateLayout, req.PeriodEnd); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "period_end must be YYYY-MM-DD")
		}
	}

	result, err := h.svc.SubmitBulletin(c.Request().Context(), sub)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusUnprocessableEntity, verr)
		case errors.Is(err, db.ErrUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
		}
	}

	status := http.StatusCreated
	if result.NothingToSave {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

// Surveillance serves the aggregated tables. Filters come from the query
// string; all are optional and combine with AND.
func (h *Handler) Surveillance(c echo.Context) error {
	var f Filter
	f.BulletinNumber = c.QueryParam("bulletin")
	f.Service = c.QueryParam("service")
	if yearParam := c.QueryParam("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
		}
		f.Year = year
	}

	result, err := h.svc.Surveillance(c.Request().Context(), f)
	if err != nil {
		return storageHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Totals(c echo.Context) error {
	totals, err := h.svc.Totals(c.Request().Context())
	if err != nil {
		return storageHTTPError(err)
	}
	return c.JSON(http.StatusOK, totals)
}

func storageHTTPError(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
}
