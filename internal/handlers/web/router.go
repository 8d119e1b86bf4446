// Package web serves the browser side of a table: the websocket feed, clip
// downloads and a health check.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-party/internal/repositories/clips"
	"github.com/KirkDiggler/rpg-party/internal/ws"
)

// ClipsPath is the route prefix clip URLs are built from
const ClipsPath = "/clips/"

// RouterConfig holds dependencies for the web router
type RouterConfig struct {
	Hub      *ws.Hub
	Sessions session.Service
	Clips    clips.Repository

	// OriginPatterns lists the hosts allowed to open a websocket. Empty
	// allows same-origin only.
	OriginPatterns []string
}

// Validate ensures all required dependencies are present
func (c *RouterConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Hub == nil {
		vb.RequiredField("Hub")
	}
	if c.Sessions == nil {
		vb.RequiredField("Sessions")
	}
	if c.Clips == nil {
		vb.RequiredField("Clips")
	}
	return vb.Build()
}

type router struct {
	hub            *ws.Hub
	sessions       session.Service
	clips          clips.Repository
	originPatterns []string
}

// NewRouter builds the HTTP handler
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	rt := &router{
		hub:            cfg.Hub,
		sessions:       cfg.Sessions,
		clips:          cfg.Clips,
		originPatterns: cfg.OriginPatterns,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", rt.health)
	r.Get("/ws/{sessionID}", rt.stream)
	r.Get(ClipsPath+"{clipRef}", rt.clip)

	return r, nil
}

func (rt *router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *router) stream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := rt.sessions.GetSession(r.Context(), &session.GetSessionInput{SessionID: sessionID}); err != nil {
		writeError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: rt.originPatterns,
	})
	if err != nil {
		slog.Warn("Websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.CloseNow()

	if err := rt.hub.Serve(r.Context(), sessionID, conn, rt.sessions); err != nil {
		slog.Debug("Websocket closed", "session_id", sessionID, "error", err)
	}
}

func (rt *router) clip(w http.ResponseWriter, r *http.Request) {
	out, err := rt.clips.Get(r.Context(), &clips.GetInput{ClipRef: chi.URLParam(r, "clipRef")})
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := out.Clip.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Clip.Audio)))
	w.Header().Set("Cache-Control", "private, max-age=1800")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Clip.Audio)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorBody{
		Code:    code.String(),
		Message: errors.GetMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
