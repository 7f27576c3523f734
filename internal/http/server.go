// Package http exposes the project store and dashboard aggregations as a
// JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"duan/internal/amqp"
	"duan/internal/cache"
	"duan/internal/core"
	"duan/internal/log"
	"duan/internal/middleware/ratelimit"
	"duan/internal/middleware/security"
	"duan/internal/middleware/trace"
	"duan/internal/services"
	"duan/internal/storage"
)

type (
	// ProjectStore is the persistence surface the handlers use.
	ProjectStore interface {
		Create(ctx context.Context, p core.Project) (core.Project, error)
		DeleteAll(ctx context.Context) error
		List(ctx context.Context, page, limit int) (storage.ProjectPage, error)
		ListAll(ctx context.Context) ([]core.Project, error)
	}

	// JobPublisher enqueues import jobs for the worker.
	JobPublisher interface {
		PublishImportJob(ctx context.Context, msg *amqp.ImportJobMessage) error
	}

	// Options carries the optional pieces of the server wiring.
	Options struct {
		APIToken  string
		UploadDir string
		// Publisher switches uploads to async mode; nil means imports run
		// inside the request.
		Publisher JobPublisher
	}
)

// Server wires the handlers, caches and middleware around http.Server.
type Server struct {
	http.Server

	store     ProjectStore
	importer  *services.ImportService
	publisher JobPublisher
	uploadDir string
	logger    *log.Logger

	listCache *cache.LRUCache[storage.ProjectPage]
	limiter   *ratelimit.Limiter

	cacheCtx     context.Context
	cacheCancel  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store ProjectStore, importer *services.ImportService, logger *log.Logger, opts Options) *Server {
	cacheCtx, cacheCancel := context.WithCancel(context.Background())

	s := &Server{
		store:       store,
		importer:    importer,
		publisher:   opts.Publisher,
		uploadDir:   opts.UploadDir,
		logger:      logger.WithComponent(log.ComponentHTTP),
		listCache:   cache.NewLRUCache[storage.ProjectPage](100, 5*time.Minute),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		cacheCtx:    cacheCtx,
		cacheCancel: cacheCancel,
	}
	go s.listCache.Janitor(cacheCtx, 10*time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	auth := security.BearerAuth(opts.APIToken)
	limited := s.limiter.Middleware(clientIP)

	mux.Handle("POST /projects", auth(http.HandlerFunc(s.handleCreateProject)))
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.Handle("DELETE /projects/all", auth(http.HandlerFunc(s.handleDeleteAllProjects)))

	mux.Handle("POST /imports", auth(limited(http.HandlerFunc(s.handleImportUpload))))
	mux.Handle("POST /imports/sheet", auth(limited(http.HandlerFunc(s.handleImportSheet))))

	mux.HandleFunc("GET /dashboard/investors", s.handleInvestorCounts)
	mux.HandleFunc("GET /dashboard/investor-values", s.handleInvestorValues)
	mux.HandleFunc("GET /dashboard/costs", s.handleCosts)
	mux.HandleFunc("GET /dashboard/completion", s.handleCompletion)
	mux.HandleFunc("GET /dashboard/types", s.handleTypeRatio)
	mux.HandleFunc("GET /dashboard/personnel", s.handlePersonnel)
	mux.HandleFunc("GET /dashboard/kpis", s.handleKPIs)

	requestID := log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})
	traced := trace.NewMiddleware(logger, clientIP)
	handler := traced.Middleware(security.Headers(log.Middleware(logger)(requestID(mux))))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheCancel()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateLists drops every cached listing page. Mutations change totals
// and page contents, so partial invalidation is not worth the bookkeeping.
func (s *Server) invalidateLists() {
	s.listCache.Purge()
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
