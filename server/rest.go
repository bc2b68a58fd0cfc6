package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type listStatus struct {
	Loaded    bool      `json:"loaded"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// statusHandler reports server info and the state of cached lists without hitting the backend
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	feeds, logs := s.feeds.Snapshot(), s.logs.Snapshot()

	status := struct {
		Version    string     `json:"version"`
		Status     string     `json:"status"`
		Time       time.Time  `json:"time"`
		Feeds      listStatus `json:"feeds"`
		ImportLogs listStatus `json:"import_logs"`
	}{
		Version:    s.version,
		Status:     "ok",
		Time:       time.Now(),
		Feeds:      listStatus{Loaded: feeds.Loaded, Count: len(feeds.Items), UpdatedAt: feeds.UpdatedAt},
		ImportLogs: listStatus{Loaded: logs.Loaded, Count: len(logs.Items), UpdatedAt: logs.UpdatedAt},
	}
	if feeds.Err != nil {
		status.Feeds.Error = feeds.Err.Error()
	}
	if logs.Err != nil {
		status.ImportLogs.Error = logs.Err.Error()
	}

	renderJSON(w, r, http.StatusOK, status)
}

// feedsJSONHandler returns the feed list, falling back to the last snapshot if the read fails
func (s *Server) feedsJSONHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.feeds.Revalidate(r.Context())
	if snap.Err != nil && !snap.Loaded {
		renderError(w, r, snap.Err, http.StatusBadGateway)
		return
	}
	renderJSON(w, r, http.StatusOK, snap.Items)
}

// importLogsJSONHandler returns import logs, falling back to the last snapshot if the read fails
func (s *Server) importLogsJSONHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.logs.Revalidate(r.Context())
	if snap.Err != nil && !snap.Loaded {
		renderError(w, r, snap.Err, http.StatusBadGateway)
		return
	}
	renderJSON(w, r, http.StatusOK, snap.Items)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
