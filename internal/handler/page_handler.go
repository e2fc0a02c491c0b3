package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"mdnotes-server/pkg/response"
	"mdnotes-server/web"

	"github.com/rs/zerolog"
)

type pageData struct {
	Title    string
	FeedPath string
}

// PageHandler serves the application shell and its static assets.
type PageHandler struct {
	index  *template.Template
	static http.Handler
	data   pageData
	logger zerolog.Logger
}

func NewPageHandler(title, feedPath string, logger zerolog.Logger) (*PageHandler, error) {
	index, err := template.ParseFS(web.Templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	return &PageHandler{
		index:  index,
		static: http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))),
		data:   pageData{Title: title, FeedPath: feedPath},
		logger: logger,
	}, nil
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.index.Execute(&buf, h.data); err != nil {
		h.logger.Error().Err(err).Msg("render index")
		response.InternalError(w, "Error rendering page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *PageHandler) Static(w http.ResponseWriter, r *http.Request) {
	h.static.ServeHTTP(w, r)
}
