package ws

import (
	"net/http"
	"strings"

	"parttime-match/internal/logger"
	"parttime-match/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub    *Hub
	jwt    jwt.Service
	logger *zap.Logger
}

func NewHandler(hub *Hub, jwtSvc jwt.Service, log *zap.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc, logger: logger.OrNop(log).Named("ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleUpdates upgrades an access-token holder to a websocket subscribed to
// their own user topic. Browsers cannot set headers on the upgrade request,
// so the token travels in ?token=.
func (h *Handler) HandleUpdates(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil || claims.TokenType != jwt.TokenTypeAccess {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	topic := UserTopic(claims.UserID)
	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(h.hub, conn, topic)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
