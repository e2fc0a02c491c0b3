package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"mdnotes-server/internal/domain"
	"mdnotes-server/internal/middleware"
	"mdnotes-server/internal/service"
	"mdnotes-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	msgNotFound    = "File not found or access denied."
	msgInvalidName = "Invalid filename."
)

type NoteHandler struct {
	service      *service.NoteService
	validate     *validator.Validate
	maxBodyBytes int64
	logger       zerolog.Logger
}

func NewNoteHandler(service *service.NoteService, maxBodyBytes int64, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service:      service,
		validate:     validator.New(),
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.List()
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r)).Msg("list notes")
		response.InternalError(w, fmt.Sprintf("Error reading files: %v", err))
		return
	}

	response.Success(w, files)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := filenameVar(r)
	if !ok {
		response.NotFound(w, msgNotFound)
		return
	}

	note, err := h.service.Get(name)
	if err != nil {
		h.writeError(w, r, err, "reading", http.StatusNotFound)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveNoteRequest
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	if err := decodeBody(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit))
			return
		}
		response.UnprocessableEntity(w, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.UnprocessableEntity(w, err.Error())
		return
	}

	name, ok := filenameVar(r)
	if !ok {
		response.BadRequest(w, msgInvalidName)
		return
	}

	stored, err := h.service.Save(name, &req)
	if err != nil {
		h.writeError(w, r, err, "saving", http.StatusBadRequest)
		return
	}

	response.Success(w, domain.MessageResponse{
		Message: fmt.Sprintf("File '%s' saved successfully.", stored),
	})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := filenameVar(r)
	if !ok {
		response.NotFound(w, msgNotFound)
		return
	}

	if err := h.service.Delete(name); err != nil {
		h.writeError(w, r, err, "deleting", http.StatusNotFound)
		return
	}

	response.Success(w, domain.MessageResponse{
		Message: fmt.Sprintf("File '%s' deleted successfully.", name),
	})
}

// writeError maps domain error kinds to HTTP statuses. invalidNameStatus is
// 400 on the write path and 404 where a bad name simply cannot exist.
func (h *NoteHandler) writeError(w http.ResponseWriter, r *http.Request, err error, action string, invalidNameStatus int) {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		if invalidNameStatus == http.StatusBadRequest {
			response.BadRequest(w, msgInvalidName)
			return
		}
		response.NotFound(w, msgNotFound)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAccessDenied):
		response.NotFound(w, msgNotFound)
	default:
		h.logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r)).
			Str("action", action).
			Msg("note operation failed")
		response.InternalError(w, fmt.Sprintf("Error %s file: %v", action, err))
	}
}

// decodeBody decodes exactly one JSON value from the request body.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// filenameVar returns the decoded {filename} route variable. The router keeps
// paths encoded so that %2F reaches the resolver instead of splitting routes.
func filenameVar(r *http.Request) (string, bool) {
	raw := mux.Vars(r)["filename"]
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}
