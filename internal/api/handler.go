package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gonkalabs/decomment/internal/engine"
	"github.com/gonkalabs/decomment/internal/sanitize"
)

// maxBody caps the request body of POST /v1/strip.
const maxBody = 16 << 20

// maxEngines bounds the per-directive-set engine cache.
const maxEngines = 32

// Handler implements all HTTP endpoints.
type Handler struct {
	base *engine.Engine // built from the configured keep-directives
	opts engine.Options

	mu      sync.RWMutex
	engines map[string]*engine.Engine // keyed by extra keep-directives
}

// New creates a Handler. base serves requests without extra keep-directives;
// opts is reused to build engines for requests that bring their own.
func New(base *engine.Engine, opts engine.Options) *Handler {
	return &Handler{
		base:    base,
		opts:    opts,
		engines: make(map[string]*engine.Engine),
	}
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /v1/profiles", h.listProfiles)
	mux.HandleFunc("POST /v1/strip", h.strip)
}

// ---------- endpoints ----------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) listProfiles(w http.ResponseWriter, _ *http.Request) {
	type profileEntry struct {
		ID         string   `json:"id"`
		Engine     string   `json:"engine"`
		Extensions []string `json:"extensions"`
	}

	var entries []profileEntry
	for _, p := range h.base.Profiles().Profiles() {
		entries = append(entries, profileEntry{
			ID:         p.ID,
			Engine:     p.Engine.String(),
			Extensions: p.Extensions,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data":   entries,
	})
}

type stripRequest struct {
	Filename       string   `json:"filename"`
	Content        string   `json:"content"`
	KeepDirectives []string `json:"keep_directives"`
}

type stripResponse struct {
	Content string `json:"content"`
	Changed bool   `json:"changed"`
	Profile string `json:"profile"`
}

func (h *Handler) strip(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	var req stripRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Filename == "" {
		writeErr(w, http.StatusBadRequest, "filename is required")
		return
	}

	eng, err := h.engineFor(req.KeepDirectives)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := eng.Strip(r.Context(), req.Filename, req.Content)
	if errors.Is(err, engine.ErrUnsupported) {
		writeErr(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	if err != nil {
		slog.Error("strip error", "filename", req.Filename, "err", err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("strip", "filename", req.Filename, "profile", res.Profile, "changed", res.Changed, "bytes", len(req.Content))
	writeJSON(w, http.StatusOK, stripResponse{
		Content: res.Text,
		Changed: res.Changed,
		Profile: res.Profile,
	})
}

// ---------- helpers ----------

// engineFor returns an engine honouring the configured keep-directives plus
// extra. Engines are cached per directive list.
func (h *Handler) engineFor(extra []string) (*engine.Engine, error) {
	if len(extra) == 0 {
		return h.base, nil
	}
	key := strings.Join(extra, "\x00")

	h.mu.RLock()
	eng, ok := h.engines[key]
	h.mu.RUnlock()
	if ok {
		return eng, nil
	}

	patterns := append(h.base.Keep().Patterns(), extra...)
	keep, err := sanitize.CompileKeep(patterns)
	if err != nil {
		return nil, err
	}
	opts := h.opts
	opts.Keep = keep
	eng, err = engine.New(h.base.Profiles(), opts)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if len(h.engines) >= maxEngines {
		clear(h.engines)
	}
	h.engines[key] = eng
	h.mu.Unlock()
	return eng, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
