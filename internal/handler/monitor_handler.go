package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
)

const (
	monitorPushInterval = 2 * time.Second
	monitorWriteTimeout = 5 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowed list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live session snapshots to instructor dashboards.
type MonitorHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(assessmentService *service.AssessmentService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "monitor_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/instructor/monitor?token=...
// Pushes a snapshot of all in-progress sessions every few seconds.
func (h *MonitorHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Instructor connected")

	// Reader goroutine only detects the peer closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(monitorPushInterval)
	defer ticker.Stop()

	if err := h.push(conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			h.log.Info().Msg("Instructor disconnected")
			return
		case <-ticker.C:
			if err := h.push(conn); err != nil {
				h.log.Debug().Err(err).Msg("Snapshot push failed, closing")
				return
			}
		}
	}
}

func (h *MonitorHandler) push(conn *websocket.Conn) error {
	snapshot := h.assessmentService.MonitorSnapshot()
	conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
	return conn.WriteJSON(gin.H{
		"type":     "snapshot",
		"at":       time.Now().UTC(),
		"sessions": snapshot,
	})
}
