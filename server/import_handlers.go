package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedadmin/pkg/api"
	"github.com/umputun/feedadmin/pkg/collection"
	"github.com/umputun/feedadmin/pkg/domain"
	"github.com/umputun/feedadmin/pkg/notify"
)

// importLogsPageHandler renders the import logs page. logs and feeds are re-read concurrently,
// each list keeps its previous snapshot if its read fails.
func (s *Server) importLogsPageHandler(w http.ResponseWriter, r *http.Request) {
	var (
		logsSnap  collection.Snapshot[domain.ImportLog]
		feedsSnap collection.Snapshot[domain.Feed]
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		logsSnap = s.logs.Revalidate(ctx)
		return nil
	})
	g.Go(func() error {
		feedsSnap = s.feeds.Revalidate(ctx)
		return nil
	})
	_ = g.Wait() // revalidation never fails, errors are kept in snapshots

	data := importLogsPageView{
		ActivePage: "import-logs",
		Version:    s.version,
		Form:       importFormView{Feeds: feedsSnap.Items},
		Table:      logsTable(logsSnap, false),
	}
	if feedsSnap.Err != nil {
		data.Status = statusView{Message: api.ErrorMessage(feedsSnap.Err, msgFeedsLoad), Failed: true}
	}
	if err := s.renderPage(w, pageImportLogs, data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
	}
}

// importLogsTableHandler returns the import logs table only
func (s *Server) importLogsTableHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.logs.Revalidate(r.Context())
	s.renderComponents(w, component{tmplLogsTable, logsTable(snap, false)})
}

// startImportHandler asks the backend to import the selected feed
func (s *Server) startImportHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	feeds := s.feeds.Snapshot().Items
	feedURL := strings.TrimSpace(r.FormValue("feedUrl"))
	if feedURL == "" {
		s.renderComponents(w,
			component{tmplImportForm, importFormView{Feeds: feeds}},
			component{tmplStatus, statusView{Message: msgSelectFeed, Failed: true, OOB: true}},
		)
		return
	}

	ctx := r.Context()
	if err := s.backend.StartImport(ctx, feedURL); err != nil {
		log.Printf("[WARN] failed to start import for %s: %v", feedURL, err)
		s.renderComponents(w,
			component{tmplImportForm, importFormView{Feeds: feeds, Selected: feedURL}},
			component{tmplStatus, statusView{Message: api.ErrorMessage(err, msgImportFailed), Failed: true, OOB: true}},
		)
		return
	}
	log.Printf("[INFO] import started for %s", feedURL)

	snap := s.logs.Revalidate(ctx)
	s.renderComponents(w,
		component{tmplImportForm, importFormView{Feeds: feeds, Selected: feedURL}},
		component{tmplStatus, statusView{Message: msgImportStarted, OOB: true}},
		component{tmplLogsTable, logsTable(snap, true)},
	)
}

// importFailuresHandler shows failed jobs of a single import log from the current snapshot
func (s *Server) importFailuresHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, l := range s.logs.Snapshot().Items {
		if l.ID == id {
			s.renderComponents(w, component{tmplImportFailures, l})
			return
		}
	}
	s.respondWithError(w, http.StatusNotFound, "Import log not found", nil)
}

// importEventsHandler streams import log updates to the page as server-sent events.
// each stream holds its own push subscription, released when the client goes away.
// every importLogUpdate notification triggers exactly one re-read of the logs.
func (s *Server) importEventsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("[WARN] can't reset write deadline for event stream: %v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		log.Printf("[WARN] failed to open event stream: %v", err)
		return
	}
	if err := rc.Flush(); err != nil {
		log.Printf("[WARN] event stream is not supported: %v", err)
		return
	}

	client := r.RemoteAddr
	log.Printf("[DEBUG] import log subscription opened for %s", client)
	err := s.notifier.Listen(ctx, func(ev notify.Event) {
		if ev.Name != notify.EventImportLogUpdate {
			return
		}
		snap := s.logs.Revalidate(ctx)
		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, tmplLogsTable, logsTable(snap, false)); err != nil {
			log.Printf("[ERROR] failed to render %s: %v", tmplLogsTable, err)
			return
		}
		if err := writeEvent(w, notify.EventImportLogUpdate, buf.Bytes()); err != nil {
			log.Printf("[DEBUG] failed to send event to subscription of %s: %v", client, err)
			return
		}
		if err := rc.Flush(); err != nil {
			log.Printf("[DEBUG] failed to flush event to subscription of %s: %v", client, err)
		}
	})
	if err != nil {
		log.Printf("[WARN] import log subscription for %s failed: %v", client, err)
	}
	log.Printf("[DEBUG] import log subscription closed for %s", client)
}

// writeEvent writes a single server-sent event, multi-line data is split into data fields
func writeEvent(w io.Writer, event string, data []byte) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "event: %s\n", event)
	body := strings.TrimRight(strings.ReplaceAll(string(data), "\r", ""), "\n")
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}
