package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/commandpost/internal/command"
	"github.com/nidhogg/commandpost/internal/gateway"
	"github.com/nidhogg/commandpost/internal/store"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	registry *command.Registry
	gw       *gateway.Gateway
	restGW   *gateway.RESTAdapter
	store    *store.Store // optional
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(registry *command.Registry, gw *gateway.Gateway,
	restGW *gateway.RESTAdapter, st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		gw:       gw,
		restGW:   restGW,
		store:    st,
		logger:   logger,
	}
}

// Router builds the HTTP route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/commands", h.listCommands)
		r.Get("/gateway/status", h.gatewayStatus)
		r.Get("/history", h.history)
		r.Mount("/gateway/rest", h.restGW.Routes())
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// commandInfo is the JSON view of a registered command.
type commandInfo struct {
	Name       string   `json:"name"`
	Desc       string   `json:"desc,omitempty"`
	Usage      []string `json:"usage"`
	Permission string   `json:"permission,omitempty"`
}

func (h *Handler) listCommands(w http.ResponseWriter, _ *http.Request) {
	names := h.registry.Primaries()
	out := make([]commandInfo, 0, len(names))
	for _, name := range names {
		desc := h.registry.Lookup(name)
		out = append(out, commandInfo{
			Name:       name,
			Desc:       desc.Desc,
			Usage:      h.registry.UsageLines(name, desc),
			Permission: desc.Permission,
		})
	}
	writeJSON(w, out)
}

func (h *Handler) gatewayStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.gw.StatusAll())
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, `{"error":"dispatch history not configured"}`, http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.store.RecentDispatches(r.Context(), r.URL.Query().Get("actor"), limit)
	if err != nil {
		h.logger.Error("history query failed", zap.Error(err))
		http.Error(w, `{"error":"history query failed"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.DispatchRecord{}
	}
	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
