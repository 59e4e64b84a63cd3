package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Wendpat-byte/banfora/internal/platform/auth"
	"github.com/Wendpat-byte/banfora/internal/platform/db"
	"github.com/Wendpat-byte/banfora/pkg/pagination"
)

type Handler struct {
	svc    *Service
	issuer *auth.TokenIssuer
}

func NewHandler(svc *Service, issuer *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/login", h.Login)
	api.GET("/users", h.ListUsers, auth.RequireRole(auth.RoleAdministrator))
	api.POST("/users", h.CreateUser, auth.RequireRole(auth.RoleAdministrator))
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	Principal *auth.Principal `json:"principal"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	principal, err := h.svc.Authenticate(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, db.ErrUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
		}
	}

	token, err := h.issuer.Issue(principal)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "token issuance failed")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Principal: principal})
}

type createUserRequest struct {
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.CreateUser(c.Request().Context(),
		req.LastName, req.FirstName, req.Identifier, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return echo.NewHTTPError(http.StatusConflict, "identifier already in use")
		case errors.Is(err, db.ErrUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		case errors.Is(err, db.ErrQueryFailed):
			return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, db.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	if items == nil {
		items = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
