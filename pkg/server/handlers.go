package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/logger"
)

// queryRequest is the body of POST /api/query and the first websocket
// message on the stream endpoint.
type queryRequest struct {
	Query string `json:"query"`
}

// datasetResponse confirms a dataset install with its derived summary.
type datasetResponse struct {
	Loaded  bool                 `json:"loaded"`
	Rows    datasetRowCounts     `json:"rows"`
	Summary data.BusinessSummary `json:"summary"`
}

type datasetRowCounts struct {
	Sales     int `json:"sales"`
	Inventory int `json:"inventory"`
	Reviews   int `json:"reviews"`
}

// handleDataset installs the business dataset for the session, replacing
// any previous one wholesale.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	var ds data.Dataset
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset body: "+err.Error())
		return
	}

	s.store.Set(ds)
	s.metrics.DatasetLoads.Inc()

	logger.InfoCF("server", "Dataset installed", map[string]interface{}{
		"sales":     len(ds.Sales),
		"inventory": len(ds.Inventory),
		"reviews":   len(ds.Reviews),
	})

	writeJSON(w, http.StatusOK, datasetResponse{
		Loaded: true,
		Rows: datasetRowCounts{
			Sales:     len(ds.Sales),
			Inventory: len(ds.Inventory),
			Reviews:   len(ds.Reviews),
		},
		Summary: ds.Summarize(),
	})
}

// handleQuery runs one query through the agent and returns the full
// response envelope. The agent never fails; degraded answers are still
// HTTP 200 with the degraded flag set.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	queryID := uuid.NewString()
	logger.InfoCF("server", "Query received", map[string]interface{}{
		"query_id": queryID,
		"query":    req.Query,
	})

	summary := s.currentSummary()
	start := time.Now()
	response := s.agent.ProcessQuery(r.Context(), req.Query, summary)
	s.metrics.ObserveQuery(response.Degraded, time.Since(start).Seconds())

	w.Header().Set("X-Query-ID", queryID)
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) currentSummary() data.BusinessSummary {
	if ds, ok := s.store.Snapshot(); ok {
		return ds.Summarize()
	}
	return data.BusinessSummary{}
}
