package vaccination

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
	api.GET("/vaccinations", h.List)
	api.POST("/vaccinations", h.Create)
	api.GET("/vaccinations/catalog", h.Catalog)
	api.GET("/vaccinations/catalog/categories", h.Categories)
	api.GET("/vaccinations/:id", h.Get)
	api.PUT("/vaccinations/:id", h.Update)
	api.DELETE("/vaccinations/:id", h.Delete)
	api.POST("/vaccinations/:id/dose", h.RecordDose)
	api.GET("/vaccinations/:id/calendar.ics", h.ExportICS)
}

// Catalog returns the vaccine catalog, optionally filtered by category.
func (h *Handler) Catalog(c echo.Context) error {
	if category := c.QueryParam("category"); category != "" {
		return c.JSON(http.StatusOK, ByCategory(category))
	}
	return c.JSON(http.StatusOK, Catalog)
}

func (h *Handler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, Categories)
}

func (h *Handler) Create(c echo.Context) error {
	var v Vaccination
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	v, err := h.svc.Get(c.Request().Context(), accountID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
	}
	return c.JSON(http.StatusOK, v)
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
	var v Vaccination
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.ID = id
	v.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

type doseRequest struct {
	GivenAt time.Time  `json:"given_at"`
	NextDue *time.Time `json:"next_due_date"`
}

func (h *Handler) RecordDose(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req doseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.RecordDose(c.Request().Context(), accountID, id, req.GivenAt, req.NextDue); err != nil {
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
		return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
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
		return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="vaccination.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
