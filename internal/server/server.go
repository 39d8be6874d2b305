// Package server implements the reader's HTTP host: translation and
// cross-reference JSON from a data directory, the allow-listed API
// fallback for the same files, diagnostics, and the password-gated query
// proxy.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bible-reader/internal/bible"
	"bible-reader/internal/provider"
)

// Config carries the server's settings. Password and the provider may be
// absent; the query endpoint then degrades to a configuration error
// instead of crashing.
type Config struct {
	DataDir      string
	Password     string
	QueryTimeout time.Duration
	Logger       *slog.Logger
}

// Server hosts the reader's HTTP endpoints.
type Server struct {
	cfg     Config
	prov    provider.Provider
	log     *slog.Logger
	allowed map[string]bool
	router  chi.Router
}

// New builds a Server. prov may be nil when no upstream credential is
// configured.
func New(cfg Config, prov provider.Provider) *Server {
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 2 * time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	allowed := map[string]bool{"crossRefs.json": true}
	for _, t := range bible.Catalog {
		allowed[t.ID] = true
	}

	s := &Server{cfg: cfg, prov: prov, log: log, allowed: allowed}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/test", s.handleTest)
	r.Get("/api/list-files", s.handleListFiles)
	r.Get("/api/json/{filename}", s.handleAPIJSON)
	r.Post("/api/ask-query", s.handleAskQuery)
	r.Get("/{filename}", s.handleStatic)

	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from bible-reader server"})
}

// handleStatic serves a JSON data file from the data directory with the
// content type forced, so clients never mistake it for an HTML page.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !validJSONName(filename) {
		http.NotFound(w, r)
		return
	}
	s.serveDataFile(w, r, filename)
}

// handleAPIJSON is the fallback data path, restricted to the allow-list.
func (s *Server) handleAPIJSON(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !validJSONName(filename) || !s.allowed[filename] {
		writeError(w, http.StatusBadRequest, "Invalid JSON file request")
		return
	}
	s.serveDataFile(w, r, filename)
}

func (s *Server) serveDataFile(w http.ResponseWriter, r *http.Request, filename string) {
	path := filepath.Join(s.cfg.DataDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "File "+filename+" not found")
			return
		}
		s.log.Error("read data file", "file", filename, "err", err)
		writeError(w, http.StatusInternalServerError, "Error reading file")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func validJSONName(name string) bool {
	return strings.HasSuffix(name, ".json") &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, "/\\")
}

// handleListFiles reports the JSON files actually present in the data
// directory, for diagnosing load failures from the client side.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var jsonFiles []string
	var endpoints []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		jsonFiles = append(jsonFiles, e.Name())
		endpoints = append(endpoints, "/api/json/"+e.Name())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"dataDirectory":      s.cfg.DataDir,
		"availableJsonFiles": jsonFiles,
		"apiEndpoints":       endpoints,
	})
}
