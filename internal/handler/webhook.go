package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"tebex-support-bot/internal/model"
	"tebex-support-bot/internal/service"
)

// WebhookHandler accepts storefront notifications pushed over HTTP instead
// of relayed through the payment log channel. Both paths feed the same
// purchase pipeline.
type WebhookHandler struct {
	purchases service.PurchaseService
	logger    *slog.Logger
}

func NewWebhookHandler(purchases service.PurchaseService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		purchases: purchases,
		logger:    logger.With("component", "webhook"),
	}
}

func (h *WebhookHandler) TebexNotification(c echo.Context) error {
	var payload model.PurchasePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if payload.Action == "" || payload.Transaction == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing action or transaction")
	}

	h.logger.Info("webhook notification received", "action", payload.Action, "tbxid", payload.Transaction)
	h.purchases.HandleNotification(c.Request().Context(), &payload)

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
