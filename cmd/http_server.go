package cmd

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/config"
	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/urlclean"
	"github.com/clnbrd/clnbrd/internal/utils"
)

// requestOverhead is allowed on top of the payload limit for JSON framing.
const requestOverhead = 64 << 10

// APIHandler handles HTTP API requests
type APIHandler struct {
	service  core.CleanService
	store    *rules.Store
	port     int
	maxBytes func() int64
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(service core.CleanService, store *rules.Store, port int) *APIHandler {
	return &APIHandler{
		service: service,
		store:   store,
		port:    port,
		maxBytes: func() int64 {
			return GlobalSettings.ToRuntimeConfig().MaxPayloadBytes
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Debug("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrPayloadTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrExtractionTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrNoText), errors.Is(err, clipboard.ErrEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrBusy), errors.Is(err, core.ErrClipboardChanged):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeRequest reads a JSON body of at most limit bytes into v and
// validates it. An empty body leaves v at its zero value.
func decodeRequest(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		if status := statusFor(err); status == http.StatusRequestEntityTooLarge {
			writeError(w, status, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	if err := config.ValidateStruct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *APIHandler) writeResult(w http.ResponseWriter, res *core.Result, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res.Response())
}

// Health check endpoint (Public)
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"port":    h.port,
		"version": Version,
	})
}

// Events streams clean events as server-sent events.
func (h *APIHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	stream, cleanup, err := h.service.StreamEvents(r.Context())
	if err != nil {
		http.Error(w, "Failed to subscribe to events", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	done := r.Context().Done()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-stream:
			if !ok {
				return
			}
			name := core.EventName(msg)
			if name == "" {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				utils.Debug("Error marshaling event: %v", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\n", name)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// CleanText runs the pipeline over the posted text.
func (h *APIHandler) CleanText(w http.ResponseWriter, r *http.Request) {
	var req core.CleanTextRequest
	if !decodeRequest(w, r, h.maxBytes()+requestOverhead, &req) {
		return
	}
	if int64(len(req.Text)) > h.maxBytes() {
		err := &core.PayloadTooLargeError{Size: int64(len(req.Text)), Limit: h.maxBytes()}
		writeError(w, statusFor(err), err.Error())
		return
	}
	rctx, err := rules.ParseContext(req.Context)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.CleanText(r.Context(), rctx, req.Text)
	h.writeResult(w, res, err)
}

// CleanClipboard cleans the server's clipboard in place.
func (h *APIHandler) CleanClipboard(w http.ResponseWriter, r *http.Request) {
	var req core.ClipboardRequest
	if !decodeRequest(w, r, requestOverhead, &req) {
		return
	}
	rctx, err := rules.ParseContext(req.Context)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.Clean(r.Context(), rctx)
	h.writeResult(w, res, err)
}

// PasteClipboard cleans, pastes and restores the server's clipboard.
func (h *APIHandler) PasteClipboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CleanAndPaste(r.Context())
	h.writeResult(w, res, err)
}

// CleanURLs detracks each posted URL.
func (h *APIHandler) CleanURLs(w http.ResponseWriter, r *http.Request) {
	var req core.URLRequest
	if !decodeRequest(w, r, requestOverhead*4, &req) {
		return
	}
	out := core.URLResponse{Results: make([]urlclean.Report, 0, len(req.URLs))}
	for _, u := range req.URLs {
		out.Results = append(out.Results, urlclean.Explain(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// Rules returns the active rule set with per-stage configuration.
func (h *APIHandler) Rules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildRulesView(h.store.Snapshot(), activeProfileName()))
}

// newRouter wires the API routes. Everything except /health needs the
// bearer token.
func newRouter(h *APIHandler, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
	}))

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(token))
		r.Get("/events", h.Events)
		r.Get("/rules", h.Rules)
		r.Post("/clean", h.CleanText)
		r.Post("/url", h.CleanURLs)
		r.Route("/clipboard", func(r chi.Router) {
			r.Post("/clean", h.CleanClipboard)
			r.Post("/paste", h.PasteClipboard)
		})
	})
	return r
}

// startHTTPServer serves the API on ln until the server is closed.
func startHTTPServer(server *http.Server, ln net.Listener) {
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.Debug("HTTP server error: %v", err)
	}
}

func authMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				if len(provided) == len(token) && subtle.ConstantTimeCompare([]byte(provided), []byte(token)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
}

func ensureAuthToken() string {
	tokenFile := filepath.Join(config.GetClnbrdDir(), "token")
	data, err := os.ReadFile(tokenFile)
	if err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}

	token := uuid.New().String()
	if err := os.WriteFile(tokenFile, []byte(token), 0o600); err != nil {
		utils.Debug("Failed to write token file: %v", err)
	}
	return token
}
