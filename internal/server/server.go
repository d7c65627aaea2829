// Package server exposes stage snapshots over a read-only HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

var nameRe = regexp.MustCompile(`^[a-z]+$`)

// NewRouter returns the snapshot API:
//
//	GET /healthz
//	GET /snapshots
//	GET /snapshots/{entity}/{tag}?version=
func NewRouter(store *snapshot.Store) http.Handler {
	h := &handler{store: store}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.healthz)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{entity}/{tag}", h.get)
	})
	return r
}

type handler struct {
	store *snapshot.Store
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	infos, err := h.store.List()
	if err != nil {
		zap.L().Error("list snapshots", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list snapshots")
		return
	}
	if infos == nil {
		infos = []snapshot.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	tag := chi.URLParam(r, "tag")
	version := r.URL.Query().Get("version")

	if !nameRe.MatchString(entity) || !nameRe.MatchString(tag) || !snapshot.ValidVersion(version) {
		writeError(w, http.StatusBadRequest, "invalid snapshot name")
		return
	}

	data, err := os.ReadFile(h.store.Path(entity, version, tag))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		zap.L().Error("read snapshot", zap.String("entity", entity), zap.String("tag", tag), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read snapshot")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("component", "server"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
