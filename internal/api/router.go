package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meur/cardforge/internal/logger"
	"github.com/meur/cardforge/internal/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	maxBatchSize    = 200
)

// Server holds the HTTP server dependencies
type Server struct {
	store  *storage.Store
	log    *logger.Logger
	router chi.Router
}

// New creates a new API server
func New(store *storage.Store, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		store:  store,
		log:    log,
		router: chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can mount extra handlers.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Runs
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/latest", s.handleLatestRun)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/rarities", s.handleGetRarities)

		// Titles
		r.Get("/titles", s.handleGetTitles)
		r.Get("/titles/{id}", s.handleGetTitle)

		// Characters
		r.Get("/characters", s.handleGetCharacters)
		r.Get("/characters/{id}", s.handleGetCharacter)
		r.Post("/characters/batch", s.handleGetCharactersBatch)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// resolveRun picks the run named by the "run" query parameter, or the latest
// one. It writes the error response itself and returns "" on failure.
func (s *Server) resolveRun(w http.ResponseWriter, r *http.Request) string {
	if id := r.URL.Query().Get("run"); id != "" {
		run, err := s.store.GetRun(id)
		if err != nil {
			s.log.Error("get run", "run", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to fetch run")
			return ""
		}
		if run == nil {
			respondError(w, http.StatusNotFound, "Run not found")
			return ""
		}
		return run.ID
	}

	run, err := s.store.LatestRun()
	if errors.Is(err, storage.ErrNoRuns) {
		respondError(w, http.StatusNotFound, "No curation runs yet")
		return ""
	}
	if err != nil {
		s.log.Error("latest run", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch run")
		return ""
	}
	return run.ID
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}

// --- Request helpers ---

// pagination reads limit and offset, clamping limit to maxPageSize.
func pagination(r *http.Request) (limit, offset int, err error) {
	limit, offset = defaultPageSize, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return min(limit, maxPageSize), offset, nil
}

func intParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
