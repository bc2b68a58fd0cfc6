package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/umputun/feedadmin/pkg/api"
	"github.com/umputun/feedadmin/pkg/feed"
)

// feedsPageHandler renders the feeds page, re-reading the feed list on every mount
func (s *Server) feedsPageHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.feeds.Revalidate(r.Context())
	data := feedsPageView{
		ActivePage: "feeds",
		Version:    s.version,
		Table:      s.feedsTable(snap, false),
	}
	if err := s.renderPage(w, pageFeeds, data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
	}
}

// feedsTableHandler returns the feeds table only, used for manual refresh
func (s *Server) feedsTableHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.feeds.Revalidate(r.Context())
	s.renderComponents(w, component{tmplFeedsTable, s.feedsTable(snap, false)})
}

// addFeedHandler creates a feed from the submitted form.
// on success the form is cleared and the table is refreshed out-of-band,
// on failure the typed values stay in place.
func (s *Server) addFeedHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	form := feedFormView{
		Name: strings.TrimSpace(r.FormValue("name")),
		URL:  strings.TrimSpace(r.FormValue("url")),
	}
	if form.Name == "" || form.URL == "" {
		s.renderComponents(w,
			component{tmplFeedForm, form},
			component{tmplStatus, statusView{Message: msgFieldsRequired, Failed: true, OOB: true}},
		)
		return
	}

	ctx := r.Context()
	created, err := s.backend.CreateFeed(ctx, form.Name, form.URL)
	if err != nil {
		log.Printf("[WARN] failed to add feed %s: %v", form.URL, err)
		s.renderComponents(w,
			component{tmplFeedForm, form},
			component{tmplStatus, statusView{Message: api.ErrorMessage(err, msgAddFailed), Failed: true, OOB: true}},
		)
		return
	}
	log.Printf("[INFO] feed %q added, id %s, url %s", created.Name, created.ID, created.URL)

	snap := s.feeds.Revalidate(ctx)
	s.renderComponents(w,
		component{tmplFeedForm, feedFormView{}},
		component{tmplStatus, statusView{Message: msgFeedAdded, OOB: true}},
		component{tmplFeedsTable, s.feedsTable(snap, true)},
	)
}

// deleteFeedHandler removes a feed. the browser asks for confirmation and sends confirm=yes,
// requests without it are rejected without touching the backend.
func (s *Server) deleteFeedHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if r.FormValue("confirm") != "yes" {
		s.renderComponents(w, component{tmplStatus, statusView{Message: msgNotConfirmed, Failed: true}})
		return
	}

	ctx := r.Context()
	if err := s.backend.DeleteFeed(ctx, id); err != nil {
		log.Printf("[WARN] failed to delete feed %s: %v", id, err)
		s.renderComponents(w, component{tmplStatus, statusView{Message: api.ErrorMessage(err, msgDeleteFailed), Failed: true}})
		return
	}
	log.Printf("[INFO] feed %s deleted", id)

	snap := s.feeds.Revalidate(ctx)
	s.renderComponents(w,
		component{tmplStatus, statusView{Message: msgFeedDeleted}},
		component{tmplFeedsTable, s.feedsTable(snap, true)},
	)
}

// previewFeedHandler fetches the feed directly and renders a short preview
func (s *Server) previewFeedHandler(w http.ResponseWriter, r *http.Request) {
	if s.previewer == nil {
		http.NotFound(w, r)
		return
	}

	feedURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if feedURL == "" {
		s.respondWithError(w, http.StatusBadRequest, "Feed URL is required", nil)
		return
	}

	preview, err := s.previewer.Preview(r.Context(), feedURL)
	if err != nil {
		log.Printf("[WARN] failed to preview feed %s: %v", feedURL, err)
		s.renderComponents(w, component{tmplFeedPreview, feedPreviewView{Error: msgPreviewFailed}})
		return
	}
	s.renderComponents(w, component{tmplFeedPreview, feedPreviewView{Preview: preview}})
}

// exportFeedsHandler sends feed list as OPML subscription file
func (s *Server) exportFeedsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.feeds.Revalidate(r.Context())
	if snap.Err != nil && !snap.Loaded {
		s.respondWithError(w, http.StatusBadGateway, msgFeedsLoad, snap.Err)
		return
	}

	data, err := feed.ExportOPML(snap.Items, time.Now())
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to export feeds", err)
		return
	}
	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="feeds.opml"`)
	if _, err := w.Write(data); err != nil {
		log.Printf("[WARN] failed to write OPML: %v", err)
	}
}
