package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/feedadmin/pkg/collection"
	"github.com/umputun/feedadmin/pkg/domain"
	"github.com/umputun/feedadmin/pkg/notify"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/backend.go -pkg mocks -skip-ensure -fmt goimports . Backend
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier
//go:generate moq -out mocks/previewer.go -pkg mocks -skip-ensure -fmt goimports . Previewer

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	eventsPath    = "/import-logs/events"
	throttleLimit = 100 // concurrent requests, event streams excluded
)

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	backend   Backend
	notifier  Notifier
	previewer Previewer
	version   string
	debug     bool

	feeds *collection.Loader[domain.Feed]
	logs  *collection.Loader[domain.ImportLog]

	templates     *template.Template            // components, used for partial responses
	pageTemplates map[string]*template.Template // full pages, each with base layout and components

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Backend interface for the job-feed REST API
type Backend interface {
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
	CreateFeed(ctx context.Context, name, feedURL string) (*domain.Feed, error)
	DeleteFeed(ctx context.Context, id string) error
	ListImportLogs(ctx context.Context) ([]domain.ImportLog, error)
	StartImport(ctx context.Context, feedURL string) error
}

// Notifier interface for backend push notifications
type Notifier interface {
	Listen(ctx context.Context, fn func(notify.Event)) error
}

// Previewer interface for direct feed preview
type Previewer interface {
	Preview(ctx context.Context, feedURL string) (*domain.FeedPreview, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance. previewer can be nil to disable feed preview.
func New(cfg ConfigProvider, backend Backend, notifier Notifier, previewer Previewer, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		backend:   backend,
		notifier:  notifier,
		previewer: previewer,
		version:   version,
		debug:     debug,
		feeds:     collection.NewLoader("feeds", backend.ListFeeds),
		logs:      collection.NewLoader("import logs", backend.ListImportLogs),
		router:    routegroup.New(http.NewServeMux()),
	}

	components, pages, err := loadTemplates()
	if err != nil {
		// templates are embedded, failure here is a build defect
		panic(fmt.Sprintf("failed to load templates: %v", err))
	}
	s.templates, s.pageTemplates = components, pages

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedadmin", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(skipStream(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler))
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(skipStream(rest.Throttle(throttleLimit)))
	s.router.Use(rest.SizeLimit(64 * 1024)) // forms only
}

// skipStream applies mw to all requests except the event stream. the stream stays open as long as
// the page does, so it can't hold a throttle slot, and the request logger can't flush it.
func skipStream(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == eventsPath {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/feeds", http.StatusSeeOther)
	})

	// feeds page
	s.router.HandleFunc("GET /feeds", s.feedsPageHandler)
	s.router.HandleFunc("GET /feeds/table", s.feedsTableHandler)
	s.router.HandleFunc("GET /feeds/preview", s.previewFeedHandler)
	s.router.HandleFunc("GET /feeds/export.opml", s.exportFeedsHandler)
	s.router.HandleFunc("POST /feeds", s.addFeedHandler)
	s.router.HandleFunc("DELETE /feeds/{id}", s.deleteFeedHandler)

	// import logs page
	s.router.HandleFunc("GET /import-logs", s.importLogsPageHandler)
	s.router.HandleFunc("GET /import-logs/table", s.importLogsTableHandler)
	s.router.HandleFunc("GET "+eventsPath, s.importEventsHandler)
	s.router.HandleFunc("GET /import-logs/{id}/failures", s.importFailuresHandler)
	s.router.HandleFunc("POST /import", s.startImportHandler)

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /feeds", s.feedsJSONHandler)
		r.HandleFunc("GET /import-logs", s.importLogsJSONHandler)
	})

	// static files
	s.router.Handle("GET /static/", http.FileServerFS(staticFS))
}
