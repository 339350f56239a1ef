package push

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitacare/vitacare/internal/platform/auth"
)

type Handler struct {
	svc         *Service
	vapidPublic string
}

func NewHandler(svc *Service, vapidPublic string) *Handler {
	return &Handler{svc: svc, vapidPublic: vapidPublic}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/push/vapid-public-key", h.VAPIDPublicKey)
	api.GET("/push/subscriptions", h.List)
	api.POST("/push/subscriptions", h.Subscribe)
	api.DELETE("/push/subscriptions/:id", h.Unsubscribe)
}

// VAPIDPublicKey hands the browser the key it needs to subscribe.
func (h *Handler) VAPIDPublicKey(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"public_key": h.vapidPublic})
}

func (h *Handler) Subscribe(c echo.Context) error {
	var sub Subscription
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sub.AccountID = auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Subscribe(c.Request().Context(), &sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *Handler) List(c echo.Context) error {
	accountID := auth.AccountIDFromContext(c.Request().Context())
	subs, err := h.svc.List(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if subs == nil {
		subs = []*Subscription{}
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *Handler) Unsubscribe(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	accountID := auth.AccountIDFromContext(c.Request().Context())
	if err := h.svc.Unsubscribe(c.Request().Context(), accountID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}
	return c.NoContent(http.StatusNoContent)
}
