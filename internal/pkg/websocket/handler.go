package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
)

// Handler upgrades authenticated HTTP requests to relay connections
type Handler struct {
	hub      *Hub
	frames   *MessageHandler
	upgrader websocket.Upgrader
	// ctx bounds the lifetime of every connection's frame processing
	ctx    context.Context
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty origin list accepts any origin.
func NewHandler(ctx context.Context, hub *Hub, frames *MessageHandler, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:    hub,
		frames: frames,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 || allowed["*"] {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
		ctx:    ctx,
		logger: logger,
	}
}

// HandleConnection godoc
// @Summary Open the real-time relay
// @Description Upgrades to a WebSocket. Pushes "message" events for new direct messages and accepts sendMessage and markAsRead frames.
// @Tags messages, websocket
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userID, ok := c.Get("userID")
	id, isInt := userID.(int64)
	if !ok || !isInt || id <= 0 {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User ID not found in context")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", id).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, id, h.frames, h.logger)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.ctx)

	h.logger.Info().Int64("userID", id).Str("remoteAddr", client.remoteAddr).Msg("WebSocket connection established")
}
