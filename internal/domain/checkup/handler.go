package checkup

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
	api.GET("/checkups", h.List)
	api.GET("/checkups/plan", h.Plan)
	api.POST("/checkups/sync", h.Sync)
	api.GET("/checkups/:id", h.Get)
	api.PUT("/checkups/:id", h.Update)
	api.DELETE("/checkups/:id", h.Delete)
	api.POST("/checkups/:id/complete", h.Complete)
	api.GET("/checkups/:id/calendar.ics", h.ExportICS)
}

// Plan returns the applicable checkups with computed due dates without
// touching stored rows.
func (h *Handler) Plan(c echo.Context) error {
	accountID := auth.AccountIDFromContext(c.Request().Context())
	plan, err := h.svc.Plan(c.Request().Context(), accountID, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) Sync(c echo.Context) error {
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.SyncSchedule(c.Request().Context(), accountID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	accountID := auth.AccountIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListByAccount(c.Request().Context(), accountID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	item, err := h.svc.Get(c.Request().Context(), accountID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "checkup not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item Checkup
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item.ID = id
	item.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), &item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

type completeRequest struct {
	ActualDate time.Time `json:"actual_date"`
	Notes      *string   `json:"notes"`
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Complete(c.Request().Context(), accountID, id, req.ActualDate, req.Notes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), accountID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "checkup not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ExportICS(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	content, err := h.svc.ExportICS(c.Request().Context(), accountID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "checkup not found")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="checkup.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
