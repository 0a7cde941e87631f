package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/fetch"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // reader frontends connect from arbitrary origins
	},
}

// Handler manages WebSocket connections streaming job progress
type Handler struct {
	hub     *fetch.Hub
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler over the job event hub
func NewHandler(hub *fetch.Hub, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		hub:     hub,
		logger:  logger.Named("ws"),
		metrics: metrics,
	}
}

// subscription tracks which jobs one connection wants. A connection
// starts unfiltered; the first subscribe narrows it to listed jobs.
type subscription struct {
	mu       sync.Mutex
	filtered bool
	jobs     map[string]struct{}
}

func (s *subscription) add(jobID string) {
	s.mu.Lock()
	s.filtered = true
	s.jobs[jobID] = struct{}{}
	s.mu.Unlock()
}

func (s *subscription) remove(jobID string) {
	s.mu.Lock()
	delete(s.jobs, jobID)
	s.mu.Unlock()
}

func (s *subscription) wants(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filtered {
		return true
	}
	_, ok := s.jobs[jobID]
	return ok
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	h.logger.Debug("stream connected",
		zap.String("connection_id", connID),
		zap.String("remote", c.ClientIP()))
	defer h.logger.Debug("stream disconnected", zap.String("connection_id", connID))

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	// Writes come from both the read loop and the event forwarder;
	// gorilla connections allow only one writer at a time.
	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	events, cancel := h.hub.Subscribe()
	defer cancel()

	sub := &subscription{jobs: make(map[string]struct{})}

	send(map[string]any{
		"type":          "system",
		"message":       "job stream connected",
		"connection_id": connID,
	})

	go h.forward(events, sub, send)

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "subscribe":
			if msg.JobID == "" {
				h.sendError(send, "subscribe requires job_id")
				continue
			}
			sub.add(msg.JobID)
			send(map[string]any{"type": "subscribed", "job_id": msg.JobID})
		case "unsubscribe":
			sub.remove(msg.JobID)
			send(map[string]any{"type": "unsubscribed", "job_id": msg.JobID})
		case "ping":
			send(map[string]any{"type": "pong"})
		default:
			h.sendError(send, "unknown message type")
		}
	}
}

// forward relays hub events the subscription wants until the
// subscription is cancelled or the connection stops accepting writes.
func (h *Handler) forward(events <-chan types.Event, sub *subscription, send func(any) error) {
	for evt := range events {
		if !sub.wants(evt.JobID) {
			continue
		}
		if err := send(map[string]any{
			"type":  "event",
			"event": evt,
		}); err != nil {
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("out", "event")
		}
	}
}

func (h *Handler) sendError(send func(any) error, message string) {
	send(map[string]any{
		"type":    "error",
		"message": message,
	})
}
