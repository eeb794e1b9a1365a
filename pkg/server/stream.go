package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vyaaparik/bizagent/pkg/agent"
	"github.com/vyaaparik/bizagent/pkg/logger"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser origins are already filtered by the CORS middleware on the
	// REST routes; the websocket handshake applies the same policy here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamEvent is one websocket frame: a progress step, the final
// response, or an error.
type streamEvent struct {
	Type     string              `json:"type"`
	Step     *agent.AnalysisStep `json:"step,omitempty"`
	Response *agent.Response     `json:"response,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// handleQueryStream upgrades to a websocket, reads one query request, and
// emits progress steps as they occur followed by the final response.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("server", "Websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var req queryRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeStreamEvent(conn, nil, streamEvent{Type: "error", Error: "invalid query message: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeStreamEvent(conn, nil, streamEvent{Type: "error", Error: "query is required"})
		return
	}

	logger.InfoCF("server", "Streaming query received", map[string]interface{}{
		"query": req.Query,
	})

	// Steps arrive from tool goroutines; serialize websocket writes.
	var writeMu sync.Mutex
	onStep := func(step agent.AnalysisStep) {
		writeStreamEvent(conn, &writeMu, streamEvent{Type: "step", Step: &step})
	}

	start := time.Now()
	response := s.agent.ProcessQueryStream(r.Context(), req.Query, s.currentSummary(), onStep)
	s.metrics.ObserveQuery(response.Degraded, time.Since(start).Seconds())

	writeStreamEvent(conn, &writeMu, streamEvent{Type: "response", Response: response})
}

func writeStreamEvent(conn *websocket.Conn, mu *sync.Mutex, event streamEvent) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(event); err != nil {
		logger.DebugCF("server", "Websocket write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
