package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/common/logger"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local-first tool; any origin may connect.
		return true
	},
}

// SnapshotProvider builds the board_sync message sent to a freshly connected
// client before it sees any incremental event.
type SnapshotProvider func(ctx context.Context) (*ws.Message, error)

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	snapshot SnapshotProvider
	logger   *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, snapshot SnapshotProvider, log *logger.Logger) *Handler {
	return &Handler{
		hub:      hub,
		snapshot: snapshot,
		logger:   log.WithFields(zap.String("component", "ws_handler")),
	}
}

// HandleConnection upgrades HTTP to WebSocket and handles messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	clientID := uuid.New().String()

	h.logger.Debug("WebSocket connection established",
		zap.String("client_id", clientID),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	client := NewClient(clientID, conn, h.hub, h.logger)

	// The snapshot is built and queued under the hub lock, so the client
	// observes board_sync strictly before any incremental event and no
	// event published while it connects can slip past unseen.
	var build func() (*ws.Message, error)
	if h.snapshot != nil {
		build = func() (*ws.Message, error) {
			return h.snapshot(c.Request.Context())
		}
	}
	if err := h.hub.RegisterWithSnapshot(client, build); err != nil {
		h.logger.Error("Failed to build board snapshot", zap.Error(err))
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump(c.Request.Context())
}

// RegisterHealthHandler registers the health check handler
func RegisterHealthHandler(d *ws.Dispatcher) {
	d.RegisterFunc(ws.ActionHealthCheck, func(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
		return ws.NewResponse(msg.ID, msg.Action, map[string]any{
			"status":  "ok",
			"service": "taskdeck",
		})
	})
}
