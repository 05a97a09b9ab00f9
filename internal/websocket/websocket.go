package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/services"
)

// Message types
const (
	TypeVoteRecorded  = "vote_recorded"
	TypeContestStatus = "contest_status"
	TypeContestPhase  = "contest_phase"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ContestSource is what the hub needs from the contest service
type ContestSource interface {
	ContestPhase(ctx context.Context, id string, now time.Time) (*services.ContestDetails, error)
	SyncStatuses(ctx context.Context, now time.Time) (*services.SyncResult, error)
}

// envelope is a message scoped to one contest. An empty contestID reaches
// every client.
type envelope struct {
	contestID string
	msg       models.WSMessage
}

// Hub maintains the set of active clients and fans out contest events
type Hub struct {
	log        logger.Logger
	contests   ContestSource
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	now        func() time.Time
}

// Client is a middleman between the websocket connection and the hub. A
// client with a contestID only receives that contest's events.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan models.WSMessage
	contestID string
}

// New creates a new Hub
func New(log logger.Logger, contests ContestSource) *Hub {
	return &Hub{
		log:        log,
		contests:   contests,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start runs the hub loop until ctx is cancelled
func (h *Hub) Start(ctx context.Context) {
	go h.run(ctx)
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "contest_id", client.contestID, "total_clients", total)

			if client.contestID != "" {
				go h.sendPhase(ctx, client)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if env.contestID != "" && client.contestID != "" && client.contestID != env.contestID {
					continue
				}
				select {
				case client.send <- env.msg:
				default:
					// slow client
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// sendPhase greets a contest subscriber with the contest's current phase
func (h *Hub) sendPhase(ctx context.Context, client *Client) {
	details, err := h.contests.ContestPhase(ctx, client.contestID, h.now())
	if err != nil {
		h.log.Debug("No phase for subscriber", "contest_id", client.contestID, "error", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- models.WSMessage{Type: TypeContestPhase, Payload: details}:
	default:
	}
}

// BroadcastMessage queues a message for the clients of contestID. It never
// blocks; messages are dropped when the queue is full.
func (h *Hub) BroadcastMessage(contestID, msgType string, payload interface{}) {
	select {
	case h.broadcast <- envelope{contestID: contestID, msg: models.WSMessage{Type: msgType, Payload: payload}}:
	default:
		h.log.Warn("Broadcast queue full, dropping message", "type", msgType, "contest_id", contestID)
	}
}

// BroadcastVote implements services.Broadcaster
func (h *Hub) BroadcastVote(contestID, submissionID string, votesCount int) {
	h.BroadcastMessage(contestID, TypeVoteRecorded, map[string]interface{}{
		"contest_id":    contestID,
		"submission_id": submissionID,
		"votes_count":   votesCount,
	})
}

// BroadcastContestStatus implements services.Broadcaster
func (h *Hub) BroadcastContestStatus(contestID string, status models.ContestStatus) {
	h.BroadcastMessage(contestID, TypeContestStatus, map[string]interface{}{
		"contest_id": contestID,
		"status":     status,
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			return
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request and registers a client. The optional
// contest query parameter limits the client to one contest's events.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan models.WSMessage, sendBuffer),
		contestID: r.URL.Query().Get("contest"),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// StartStatusSync periodically activates and ends contests whose schedule
// says so. It blocks until ctx is cancelled.
func (h *Hub) StartStatusSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.syncStatuses(ctx)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Contest status sync stopped")
			return
		case <-ticker.C:
			h.syncStatuses(ctx)
		}
	}
}

func (h *Hub) syncStatuses(ctx context.Context) {
	result, err := h.contests.SyncStatuses(ctx, h.now())
	if err != nil {
		if ctx.Err() == nil {
			h.log.Error("Contest status sync failed", "error", err)
		}
		return
	}
	if len(result.Activated) > 0 || len(result.Ended) > 0 {
		h.log.Info("Contest statuses synced", "activated", len(result.Activated), "ended", len(result.Ended))
	}
}

var _ services.Broadcaster = (*Hub)(nil)
