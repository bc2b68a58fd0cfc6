package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/umputun/feedadmin/pkg/api"
	"github.com/umputun/feedadmin/pkg/collection"
	"github.com/umputun/feedadmin/pkg/domain"
)

// page and component template names
const (
	pageFeeds      = "feeds.html"
	pageImportLogs = "import-logs.html"

	tmplStatus         = "status.html"
	tmplFeedForm       = "feed-form.html"
	tmplFeedsTable     = "feeds-table.html"
	tmplFeedPreview    = "feed-preview.html"
	tmplImportForm     = "import-form.html"
	tmplLogsTable      = "import-logs-table.html"
	tmplImportFailures = "import-failures.html"
)

// user-facing status messages
const (
	msgFeedAdded      = "Feed added!"
	msgAddFailed      = "Error adding feed"
	msgFeedDeleted    = "Feed deleted!"
	msgDeleteFailed   = "Error deleting feed"
	msgImportStarted  = "Import started!"
	msgImportFailed   = "Error starting import"
	msgFieldsRequired = "Name and URL are required"
	msgNotConfirmed   = "Delete not confirmed"
	msgSelectFeed     = "Select a feed to import"
	msgFeedsLoad      = "Error loading feeds"
	msgLogsLoad       = "Error loading import logs"
	msgPreviewFailed  = "Error loading feed preview"
)

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"prettyJSON": func(raw json.RawMessage) string {
		if len(raw) == 0 {
			return ""
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return string(raw)
		}
		res, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return string(raw)
		}
		return string(res)
	},
	"queryEscape": url.QueryEscape,
	"pathEscape":  url.PathEscape,
}

// loadTemplates parses components into a shared set and builds a separate set per page,
// each page set includes the base layout and all components
func loadTemplates() (components *template.Template, pages map[string]*template.Template, err error) {
	components, err = template.New("components").Funcs(templateFuncs).ParseFS(templatesFS, "templates/components/*.html")
	if err != nil {
		return nil, nil, fmt.Errorf("parse components: %w", err)
	}

	pages = make(map[string]*template.Template)
	for _, name := range []string{pageFeeds, pageImportLogs} {
		tmpl, err := components.Clone()
		if err != nil {
			return nil, nil, fmt.Errorf("clone components for %s: %w", name, err)
		}
		if tmpl, err = tmpl.ParseFS(templatesFS, "templates/base.html", "templates/pages/"+name); err != nil {
			return nil, nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return components, pages, nil
}

// statusView is the status line shared by form submissions
type statusView struct {
	Message string
	Failed  bool
	OOB     bool
}

type feedFormView struct {
	Name string
	URL  string
}

type feedsTableView struct {
	Feeds          []domain.Feed
	Loaded         bool
	Error          string
	PreviewEnabled bool
	OOB            bool
}

type feedPreviewView struct {
	Preview *domain.FeedPreview
	Error   string
}

type importFormView struct {
	Feeds    []domain.Feed
	Selected string
}

type logsTableView struct {
	Logs   []domain.ImportLog
	Loaded bool
	Error  string
	OOB    bool
}

type feedsPageView struct {
	ActivePage string
	Version    string
	Form       feedFormView
	Status     statusView
	Table      feedsTableView
}

type importLogsPageView struct {
	ActivePage string
	Version    string
	Form       importFormView
	Status     statusView
	Table      logsTableView
}

func (s *Server) feedsTable(snap collection.Snapshot[domain.Feed], oob bool) feedsTableView {
	res := feedsTableView{Feeds: snap.Items, Loaded: snap.Loaded, PreviewEnabled: s.previewer != nil, OOB: oob}
	if snap.Err != nil {
		res.Error = api.ErrorMessage(snap.Err, msgFeedsLoad)
	}
	return res
}

func logsTable(snap collection.Snapshot[domain.ImportLog], oob bool) logsTableView {
	res := logsTableView{Logs: snap.Items, Loaded: snap.Loaded, OOB: oob}
	if snap.Err != nil {
		res.Error = api.ErrorMessage(snap.Err, msgLogsLoad)
	}
	return res
}

// renderPage renders a full page using its pre-parsed template set
func (s *Server) renderPage(w http.ResponseWriter, templateName string, data any) error {
	tmpl, ok := s.pageTemplates[templateName]
	if !ok {
		return fmt.Errorf("template %s not found", templateName)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, templateName, data)
}

// renderComponents writes components one after another into a single htmx response.
// the first one is the swap target, the rest are expected to be out-of-band.
func (s *Server) renderComponents(w http.ResponseWriter, parts ...component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, p := range parts {
		if err := s.templates.ExecuteTemplate(w, p.name, p.data); err != nil {
			log.Printf("[ERROR] failed to render %s: %v", p.name, err)
			return
		}
	}
}

type component struct {
	name string
	data any
}

// respondWithError logs the error and sends a plain text error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Printf("[WARN] %s: %v", message, err)
	} else {
		log.Printf("[WARN] %s", message)
	}
	http.Error(w, message, code)
}
