package websocket

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

// BoardReader is the read side of the board store the gateway needs.
type BoardReader interface {
	GetBoard(ctx context.Context) *models.Board
}

// Gateway represents the WebSocket gateway
type Gateway struct {
	Hub        *Hub
	Dispatcher *ws.Dispatcher
	Handler    *Handler
	logger     *logger.Logger
}

// NewGateway creates a new WebSocket gateway with all components initialized
func NewGateway(boards BoardReader, log *logger.Logger) *Gateway {
	dispatcher := ws.NewDispatcher()
	hub := NewHub(dispatcher, log)

	snapshot := func(ctx context.Context) (*ws.Message, error) {
		board := boards.GetBoard(ctx)
		return ws.NewNotification(ws.ActionBoardSync, v1.BoardSyncPayload{Board: board.ToAPI()})
	}

	handler := NewHandler(hub, snapshot, log)

	RegisterHealthHandler(dispatcher)

	// board.get lets a connected client request a resync without
	// reconnecting.
	dispatcher.RegisterFunc(ws.ActionBoardGet, func(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
		board := boards.GetBoard(ctx)
		return ws.NewResponse(msg.ID, msg.Action, v1.BoardSyncPayload{Board: board.ToAPI()})
	})

	return &Gateway{
		Hub:        hub,
		Dispatcher: dispatcher,
		Handler:    handler,
		logger:     log,
	}
}

// SetupRoutes adds the WebSocket routes to the Gin engine
func (g *Gateway) SetupRoutes(router *gin.Engine) {
	router.GET("/ws", g.Handler.HandleConnection)
}
