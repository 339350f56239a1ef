package uexam

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
	api.GET("/u-examinations", h.List)
	api.POST("/u-examinations", h.Create)
	api.GET("/u-examinations/schedule", h.GetSchedule)
	api.POST("/u-examinations/regenerate", h.Regenerate)
	api.GET("/u-examinations/:id", h.Get)
	api.PUT("/u-examinations/:id", h.Update)
	api.DELETE("/u-examinations/:id", h.Delete)
	api.POST("/u-examinations/:id/complete", h.Complete)
	api.GET("/u-examinations/:id/calendar.ics", h.ExportICS)
}

// GetSchedule returns the static U-series schedule definition.
func (h *Handler) GetSchedule(c echo.Context) error {
	return c.JSON(http.StatusOK, Schedule)
}

type regenerateRequest struct {
	ChildID uuid.UUID `json:"child_id"`
}

// Regenerate recomputes a child's pending examination due dates from its
// current birth date.
func (h *Handler) Regenerate(c echo.Context) error {
	var req regenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ChildID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "child_id is required")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Regenerate(c.Request().Context(), accountID, req.ChildID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Create(c echo.Context) error {
	var e Examination
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	e, err := h.svc.Get(c.Request().Context(), accountID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "examination not found")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	accountID := auth.AccountIDFromContext(c.Request().Context())

	if childID := c.QueryParam("child_id"); childID != "" {
		cid, err := uuid.Parse(childID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid child_id")
		}
		items, total, err := h.svc.ListByChild(c.Request().Context(), cid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.ListByAccount(c.Request().Context(), accountID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var e Examination
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.ID = id
	e.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, e)
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
		return echo.NewHTTPError(http.StatusNotFound, "examination not found")
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
		return echo.NewHTTPError(http.StatusNotFound, "examination not found")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="examination.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
