package ws

import (
	"context"
	"net/http"

	"ChartFeed/internal/usecase"
	xlogger "ChartFeed/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Hub pushes chart snapshots to connected render clients. It holds the hub
// loop; per-connection pumps live in client.go.
type Hub struct {
	logger *xlogger.Logger
	ctrl   *usecase.ChartController

	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan usecase.Snapshot
}

func NewHub(logger *xlogger.Logger, ctrl *usecase.ChartController) *Hub {
	h := &Hub{
		logger: logger,
		ctrl:   ctrl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan usecase.Snapshot, 16),
	}
	// every applied controller transition reaches connected clients
	ctrl.OnChange(h.Notify)
	return h
}

// Notify queues a snapshot for broadcast. Non-blocking so the controller's
// run loop is never stalled by slow consumers.
func (h *Hub) Notify(s usecase.Snapshot) {
	select {
	case h.broadcast <- s:
	default:
	}
}

// Run is the hub loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			// send current state on connect
			select {
			case c.send <- h.ctrl.Snapshot():
			default:
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case snap := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- snap:
				default:
					// client too slow, disconnect to keep the hub live
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Serve upgrades an HTTP request to a websocket subscription.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{hub: h, conn: conn, send: make(chan usecase.Snapshot, 8)}
	h.register <- cl

	go cl.writePump()
	go cl.readPump()
	return nil
}
