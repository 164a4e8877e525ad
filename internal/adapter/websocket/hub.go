package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
	"github.com/oceanBigOne/mre-who-am-i/internal/scene"
)

const (
	sendBufferSize = 64
	writeTimeout   = 5 * time.Second
)

var (
	ErrHubStopped     = errors.New("hub stopped")
	ErrTooManyClients = errors.New("max websocket clients reached")
)

// SnapshotSource supplies the state a freshly connected client starts from.
type SnapshotSource interface {
	Snapshot() ([]scene.Op, uint64)
}

type message struct {
	Type     string     `json:"type"`
	Revision uint64     `json:"rev,omitempty"`
	Ops      []scene.Op `json:"ops,omitempty"`
	Op       *scene.Op  `json:"op,omitempty"`
}

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	clientID uuid.UUID
	conn     *websocket.Conn
	errCh    chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	clientID uuid.UUID
}

func (cmdUnregister) hubCmd() {}

type cmdPublish struct {
	op scene.Op
}

func (cmdPublish) hubCmd() {}

type cmdGetClientCount struct {
	replyCh chan int
}

func (cmdGetClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	since  uint64 // revision covered by the snapshot this client received
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn, since uint64) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		since:  since,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg := <-cw.sendCh:
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	_ = cw.conn.Close()
}

// --- Hub ---

// Hub streams scene operations to every connected client. A single goroutine owns
// the client set; slow clients whose buffer fills up are disconnected.
type Hub struct {
	cmdCh      chan hubCmd
	done       chan struct{}
	clients    map[uuid.UUID]*clientWriter
	source     SnapshotSource
	maxClients int
	upgrader   websocket.Upgrader
	metrics    *metrics.WebSocketMetrics
}

func NewHub(source SnapshotSource, maxClients int, checkOrigin func(*http.Request) bool, m *metrics.WebSocketMetrics) *Hub {
	hub := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]*clientWriter),
		source:     source,
		maxClients: maxClients,
		upgrader:   websocket.Upgrader{CheckOrigin: checkOrigin},
		metrics:    m,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	defer close(h.done)
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.clientID)
		case cmdPublish:
			h.handlePublish(c.op)
		case cmdGetClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting scene client, max clients reached", "max_clients", h.maxClients)
		_ = c.conn.Close()
		c.errCh <- fmt.Errorf("%w (%d)", ErrTooManyClients, h.maxClients)
		return
	}

	ops, rev := h.source.Snapshot()
	data, err := json.Marshal(message{Type: "snapshot", Revision: rev, Ops: ops})
	if err != nil {
		_ = c.conn.Close()
		c.errCh <- fmt.Errorf("failed to encode snapshot: %w", err)
		return
	}

	cw := newClientWriter(c.conn, rev)
	cw.sendCh <- data
	h.clients[c.clientID] = cw
	if h.metrics != nil {
		h.metrics.ActiveConnections.Inc()
	}
	slog.Info("Scene client registered", "client_id", c.clientID, "revision", rev, "total_clients", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(clientID uuid.UUID) {
	cw, exists := h.clients[clientID]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, clientID)
	if h.metrics != nil {
		h.metrics.ActiveConnections.Dec()
	}
	slog.Info("Scene client unregistered", "client_id", clientID, "remaining_clients", len(h.clients))
}

func (h *Hub) handlePublish(op scene.Op) {
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(message{Type: "op", Op: &op})
	if err != nil {
		slog.Error("Failed to encode scene op", "op", op.Kind, "error", err)
		return
	}

	var slow []uuid.UUID
	for id, cw := range h.clients {
		if op.Revision <= cw.since {
			continue
		}
		select {
		case cw.sendCh <- data:
		default:
			slow = append(slow, id)
		}
	}
	if h.metrics != nil {
		h.metrics.MessagesPublished.Inc()
	}

	for _, id := range slow {
		slog.Warn("Disconnecting slow scene client", "client_id", id)
		if h.metrics != nil {
			h.metrics.SlowClientsEvicted.Inc()
		}
		h.handleUnregister(id)
	}
}

func (h *Hub) handleStop() {
	for id, cw := range h.clients {
		cw.stop()
		delete(h.clients, id)
		if h.metrics != nil {
			h.metrics.ActiveConnections.Dec()
		}
	}
}

// send delivers cmd to the hub goroutine unless the hub has stopped.
func (h *Hub) send(cmd hubCmd) bool {
	select {
	case h.cmdCh <- cmd:
		return true
	case <-h.done:
		return false
	}
}

// --- Public API ---

func (h *Hub) Register(clientID uuid.UUID, conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	if !h.send(cmdRegister{clientID: clientID, conn: conn, errCh: errCh}) {
		_ = conn.Close()
		return ErrHubStopped
	}
	select {
	case err := <-errCh:
		return err
	case <-h.done:
		_ = conn.Close()
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(clientID uuid.UUID) {
	h.send(cmdUnregister{clientID: clientID})
}

// Publish implements scene.Publisher.
func (h *Hub) Publish(op scene.Op) {
	h.send(cmdPublish{op: op})
}

func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	if !h.send(cmdGetClientCount{replyCh: replyCh}) {
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.done:
		return 0
	}
}

// Stop disconnects every client and waits for the hub goroutine to exit.
func (h *Hub) Stop() {
	if h.send(cmdStop{}) {
		<-h.done
	}
}

// ServeHTTP upgrades the request and streams the scene until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	clientID := uuid.New()
	if err := h.Register(clientID, conn); err != nil {
		slog.Warn("Scene client rejected", "error", err)
		return
	}

	go func() {
		defer h.Unregister(clientID)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
