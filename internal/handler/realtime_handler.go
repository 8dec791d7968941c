package handler

import (
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/pkg/serverutils"
	internalWS "companion-counselling-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RealtimeHandler upgrades authenticated clients onto the push hub.
type RealtimeHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, logger: log}
}

// RegisterRoutes mounts /ws. Browsers cannot set headers on an upgrade, so the
// auth middleware also reads the token query parameter.
func (h *RealtimeHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/ws", auth, h.ServeWs)
}

func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(c)
	if err != nil {
		return err
	}
	recipient, ok := actor.Recipient()
	if !ok {
		return apperror.Authorization("only users and consultants receive pushes")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		details := map[string]interface{}{"recipient_type": string(recipient.Type), "recipient_id": recipient.Id}
		h.logger.Info("RealtimeHandler", "Starting WebSocket session", details)
		internalWS.ServeWs(h.hub, conn, recipient)
		h.logger.Info("RealtimeHandler", "WebSocket session ended", details)
	})(c)
}
