// Package server wires handlers, middleware and the router into an
// *http.Server.
package server

import (
	"net/http"

	"mdnotes-server/internal/config"
	"mdnotes-server/internal/handler"
	"mdnotes-server/internal/middleware"
	"mdnotes-server/internal/service"
	"mdnotes-server/internal/websocket"
	"mdnotes-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	ServiceName = "mdnotes-server"
	FeedPath    = "/ws"
	pageTitle   = "Markdown Notes"
)

type Deps struct {
	Config *config.Config
	Notes  *service.NoteService
	Hub    *websocket.Manager
	Logger zerolog.Logger
}

// NewRouter builds the full HTTP handler, middleware included.
//
// Paths are neither cleaned nor decoded before matching: a request for
// /api/files/../../etc/passwd does not match any route, and %2F inside a
// file name stays within the {filename} variable.
func NewRouter(d Deps) (http.Handler, error) {
	pageHandler, err := handler.NewPageHandler(pageTitle, FeedPath, d.Logger)
	if err != nil {
		return nil, err
	}
	noteHandler := handler.NewNoteHandler(d.Notes, d.Config.Notes.MaxBodyBytes, d.Logger)
	wsHandler := handler.NewWebSocketHandler(d.Hub, d.Logger)

	r := mux.NewRouter()
	r.SkipClean(true)
	r.UseEncodedPath()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", noteHandler.List).Methods("GET")
	api.HandleFunc("/files/{filename}", noteHandler.Get).Methods("GET")
	api.HandleFunc("/files/{filename}", noteHandler.Save).Methods("POST")
	api.HandleFunc("/files/{filename}", noteHandler.Delete).Methods("DELETE")

	r.HandleFunc(FeedPath, wsHandler.HandleConnection).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.PathPrefix("/static/").HandlerFunc(pageHandler.Static).Methods("GET", "HEAD")
	r.HandleFunc("/", pageHandler.Index).Methods("GET")

	var h http.Handler = r
	h = middleware.CORSMiddleware(
		d.Config.CORS.AllowedOrigins,
		d.Config.CORS.AllowedMethods,
		d.Config.CORS.AllowedHeaders,
	)(h)
	h = middleware.LoggerMiddleware(d.Logger)(h)

	return h, nil
}

func New(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, "Not Found")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	response.MethodNotAllowed(w, "Method Not Allowed")
}
