// Package api exposes the ledger over HTTP as a JSON API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cashflow/internal/cache"
	"cashflow/internal/log"
	"cashflow/internal/services"
)

// nameItem is the shape of a hierarchy lookup entry, enough to fill a
// dependent select.
type nameItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Options tunes the server independently from the global config.
type Options struct {
	RequestTimeout  time.Duration
	LookupCacheSize int
	LookupCacheTTL  time.Duration
}

// DefaultOptions returns the options used when a zero Options is given.
func DefaultOptions() Options {
	return Options{
		RequestTimeout:  30 * time.Second,
		LookupCacheSize: 200,
		LookupCacheTTL:  5 * time.Minute,
	}
}

// Server routes HTTP requests to the ledger and reference services.
type Server struct {
	router chi.Router
	logger *log.Logger

	ledger *services.LedgerService
	refs   *services.ReferenceService

	// lookupCache holds hierarchy lookup results, keyed by parent kind
	// and id. Any reference write purges it.
	lookupCache *cache.LRUCache[[]nameItem]
}

// NewServer builds the router with all routes and middleware attached.
func NewServer(ledger *services.LedgerService, refs *services.ReferenceService, logger *log.Logger, opts Options) *Server {
	def := DefaultOptions()
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = def.RequestTimeout
	}
	if opts.LookupCacheSize <= 0 {
		opts.LookupCacheSize = def.LookupCacheSize
	}
	if opts.LookupCacheTTL <= 0 {
		opts.LookupCacheTTL = def.LookupCacheTTL
	}

	s := &Server{
		logger:      logger.WithComponent("api"),
		ledger:      ledger,
		refs:        refs,
		lookupCache: cache.NewLRUCache[[]nameItem](opts.LookupCacheSize, opts.LookupCacheTTL),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(securityHeaders)

	r.Get("/healthz", s.health)
	r.Get("/readyz", s.ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/statuses", func(r chi.Router) {
			r.Get("/", s.listStatuses)
			r.Post("/", s.createStatus)
			r.Get("/{id}", s.getStatus)
			r.Put("/{id}", s.updateStatus)
			r.Delete("/{id}", s.deleteStatus)
		})

		r.Route("/transaction-types", func(r chi.Router) {
			r.Get("/", s.listTransactionTypes)
			r.Post("/", s.createTransactionType)
			r.Get("/{id}", s.getTransactionType)
			r.Put("/{id}", s.updateTransactionType)
			r.Delete("/{id}", s.deleteTransactionType)
			r.Get("/{id}/categories", s.typeCategories)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/", s.createCategory)
			r.Get("/{id}", s.getCategory)
			r.Put("/{id}", s.updateCategory)
			r.Delete("/{id}", s.deleteCategory)
			r.Get("/{id}/subcategories", s.categorySubcategories)
		})

		r.Route("/subcategories", func(r chi.Router) {
			r.Get("/", s.listSubcategories)
			r.Post("/", s.createSubcategory)
			r.Get("/{id}", s.getSubcategory)
			r.Put("/{id}", s.updateSubcategory)
			r.Delete("/{id}", s.deleteSubcategory)
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.listRecords)
			r.Post("/", s.createRecord)
			r.Get("/{id}", s.getRecord)
			r.Put("/{id}", s.updateRecord)
			r.Delete("/{id}", s.deleteRecord)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", s.reportSummary)
			r.Get("/by-category", s.reportByCategory)
			r.Get("/monthly", s.reportMonthly)
		})
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	// Readiness means the store answers; the cheapest probe is a
	// reference listing.
	if _, err := s.refs.ListStatuses(r.Context(), ""); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Store is not reachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
