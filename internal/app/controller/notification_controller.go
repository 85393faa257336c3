package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/internal/middleware"
	ws "github.com/ikkim/minishop-backend/internal/websocket"
)

// NotificationController upgrades clients to a websocket that streams
// their order events
type NotificationController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewNotificationController accepts connections from allowedOrigins.
// Requests without an Origin header, as sent by mini-program clients, are accepted.
func NewNotificationController(hub *ws.Hub, allowedOrigins []string) *NotificationController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &NotificationController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Connect GET /api/v1/ws?token=
func (ctrl *NotificationController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
