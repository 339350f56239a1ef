package subject

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitacare/vitacare/internal/platform/auth"
	"github.com/vitacare/vitacare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.SaveProfile)
	api.POST("/profile/dismiss-reminders", h.DismissReminders)

	api.GET("/children", h.ListChildren)
	api.POST("/children", h.CreateChild)
	api.GET("/children/:id", h.GetChild)
	api.PUT("/children/:id", h.UpdateChild)
	api.DELETE("/children/:id", h.DeleteChild)
}

// -- Profile Handlers --

func (h *Handler) GetProfile(c echo.Context) error {
	accountID := auth.AccountIDFromContext(c.Request().Context())
	p, err := h.svc.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SaveProfile(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.SaveProfile(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

type dismissRequest struct {
	Until *time.Time `json:"until"`
}

func (h *Handler) DismissReminders(c echo.Context) error {
	var req dismissRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.DismissReminders(c.Request().Context(), accountID, req.Until); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Child Handlers --

func (h *Handler) CreateChild(c echo.Context) error {
	var child Child
	if err := c.Bind(&child); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	child.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.CreateChild(c.Request().Context(), &child); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, child)
}

func (h *Handler) GetChild(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	child, err := h.svc.GetChild(c.Request().Context(), accountID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "child not found")
	}
	return c.JSON(http.StatusOK, child)
}

func (h *Handler) ListChildren(c echo.Context) error {
	pg := pagination.FromContext(c)
	accountID := auth.AccountIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListChildren(c.Request().Context(), accountID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateChild(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var child Child
	if err := c.Bind(&child); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	child.ID = id
	child.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.UpdateChild(c.Request().Context(), &child); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, child)
}

func (h *Handler) DeleteChild(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.DeleteChild(c.Request().Context(), accountID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "child not found")
	}
	return c.NoContent(http.StatusNoContent)
}
