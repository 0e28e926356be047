package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/pkg/helpers"
	"github.com/desinetwork/classifieds/pkg/response"
)

// Handler upgrades /ws requests. A bearer token is optional: when present it
// must resolve to an existing user, otherwise the connection is refused;
// absent means an anonymous read-only socket.
type Handler struct {
	Hub      *Hub
	JWT      *helpers.JWTManager
	Users    repository.UserRepository
	Logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger, allowedOrigins []string) *Handler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		Hub:    hub,
		JWT:    jwt,
		Users:  users,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

func handshakeToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Serve handles GET /ws.
func (h *Handler) Serve(c *gin.Context) {
	userID := ""
	if token := handshakeToken(c); token != "" {
		claims, err := h.JWT.Parse(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if _, err := h.Users.GetByID(c.Request.Context(), claims.UserID); err != nil {
			response.Error(c, http.StatusUnauthorized, "user not found")
			return
		}
		userID = claims.UserID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		if h.Logger != nil {
			h.Logger.WithError(err).Debug("websocket upgrade failed")
		}
		return
	}

	client := newClient(h.Hub, conn, userID, h.Logger)
	if err := h.Hub.register(client); err != nil {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many connections")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		_ = conn.Close()
		return
	}

	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"user_id": userID, "remote": conn.RemoteAddr().String()}).Debug("websocket connected")
	}

	go client.writePump()
	go client.readPump()
}
