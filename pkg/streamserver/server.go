// Package streamserver exposes the event bus over a websocket endpoint
// so an external observer (a TUI, a dashboard) can watch a run live.
//
// Adapted from pkg/websocket/stream_server.go: the same
// register/unregister/broadcast channel hub and per-client send-queue
// goroutine pair, rewired to broadcast pkg/events.Bus's types.Event
// frames instead of a bespoke StreamEvent/ProgressInfo payload shape,
// and with the client-subscription-filtering and session metadata
// trimmed (cinder has one event stream, not a filterable multi-topic
// one).
package streamserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/cinderops/cinder/pkg/events"
	"github.com/cinderops/cinder/pkg/types"
)

// Server broadcasts every Event published on a bus to each connected
// websocket client as a JSON frame.
type Server struct {
	logger   hclog.Logger
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*client]struct{}

	broadcast  chan types.Event
	register   chan *client
	unregister chan *client
}

type client struct {
	conn *websocket.Conn
	send chan types.Event
}

// New creates a server that is not yet broadcasting; call Start to
// begin its processing loop, and Subscribe to wire it to a bus.
func New(logger hclog.Logger) *Server {
	return &Server{
		logger:     logger,
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan types.Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Subscribe wires bus's events into the server's broadcast channel.
func (s *Server) Subscribe(bus *events.Bus) {
	bus.Subscribe(func(e types.Event) {
		select {
		case s.broadcast <- e:
		default:
			s.logger.Warn("stream server broadcast buffer full, dropping event", "type", e.Type)
		}
	})
}

// Start runs the hub loop until stop is closed.
func (s *Server) Start(stop <-chan struct{}) {
	go s.run(stop)
}

func (s *Server) run(stop <-chan struct{}) {
	for {
		select {
		case c := <-s.register:
			s.clientsMu.Lock()
			s.clients[c] = struct{}{}
			s.clientsMu.Unlock()

		case c := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.send)
			}
			s.clientsMu.Unlock()

		case e := <-s.broadcast:
			s.clientsMu.Lock()
			for c := range s.clients {
				select {
				case c.send <- e:
				default:
					delete(s.clients, c)
					close(c.send)
				}
			}
			s.clientsMu.Unlock()

		case <-stop:
			s.clientsMu.Lock()
			for c := range s.clients {
				close(c.send)
				c.conn.Close()
				delete(s.clients, c)
			}
			s.clientsMu.Unlock()
			return
		}
	}
}

// HandleWebSocket upgrades the request and registers a new client.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan types.Event, 64)}
	s.register <- c

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) writePump(c *client) {
	defer c.conn.Close()
	for e := range c.send {
		if err := c.conn.WriteJSON(e); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards client input; its only purpose is to detect the
// client closing the connection and unregister it.
func (s *Server) readPump(c *client) {
	defer func() { s.unregister <- c }()
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
