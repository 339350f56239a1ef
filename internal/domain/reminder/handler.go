package reminder

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vitacare/vitacare/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reminders", h.List)
	api.GET("/reminders/summary", h.Summary)
	api.GET("/reminders/messages", h.Messages)
}

// refTime lets clients pin the reference date with ?at=2024-06-01, mainly
// for previewing.
func refTime(c echo.Context) (time.Time, error) {
	at := c.QueryParam("at")
	if at == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", at)
}

func (h *Handler) List(c echo.Context) error {
	ref, err := refTime(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at parameter, want YYYY-MM-DD")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	reminders, err := h.svc.Reminders(c.Request().Context(), accountID, ref)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return c.JSON(http.StatusOK, reminders)
}

func (h *Handler) Summary(c echo.Context) error {
	ref, err := refTime(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at parameter, want YYYY-MM-DD")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	summary, err := h.svc.Summary(c.Request().Context(), accountID, ref)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Messages(c echo.Context) error {
	ref, err := refTime(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at parameter, want YYYY-MM-DD")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	messages, err := h.svc.Messages(c.Request().Context(), accountID, ref)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if messages == nil {
		messages = []string{}
	}
	return c.JSON(http.StatusOK, messages)
}
