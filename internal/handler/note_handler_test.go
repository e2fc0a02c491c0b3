package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdnotes-server/internal/domain"
	"mdnotes-server/internal/repository"
	"mdnotes-server/internal/service"
	"mdnotes-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNoteHandler(t *testing.T, maxBody int64) (*NoteHandler, string) {
	t.Helper()
	root := t.TempDir()
	repo, err := repository.NewNoteRepository(root, "")
	require.NoError(t, err)
	svc := service.NewNoteService(repo, "", zerolog.Nop())
	return NewNoteHandler(svc, maxBody, zerolog.Nop()), root
}

func call(h http.HandlerFunc, method, filename, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/files/"+filename, strings.NewReader(body))
	if filename != "" {
		req = mux.SetURLVars(req, map[string]string{"filename": filename})
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestNoteHandler_SaveThenGet(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)

	rec := call(h.Save, http.MethodPost, "todo", `{"content":"- buy milk"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var msg domain.MessageResponse
	decode(t, rec, &msg)
	assert.Equal(t, "File 'todo.md' saved successfully.", msg.Message)
	assert.FileExists(t, filepath.Join(root, "todo.md"))

	rec = call(h.Get, http.MethodGet, "todo.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filename":"todo.md","content":"- buy milk"}`, rec.Body.String())
}

func TestNoteHandler_List(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)

	rec := call(h.List, http.MethodGet, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("B"), 0o644))

	rec = call(h.List, http.MethodGet, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list domain.FileListResponse
	decode(t, rec, &list)
	assert.ElementsMatch(t, []string{"a.md", "b.md"}, list.Files)
}

func TestNoteHandler_ListError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")
	repo, err := repository.NewNoteRepository(root, "")
	require.NoError(t, err)
	h := NewNoteHandler(service.NewNoteService(repo, "", zerolog.Nop()), 0, zerolog.Nop())

	rec := call(h.List, http.MethodGet, "", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body response.ErrorBody
	decode(t, rec, &body)
	assert.True(t, strings.HasPrefix(body.Detail, "Error reading files: "), body.Detail)
}

func TestNoteHandler_SaveValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"content":`},
		{name: "empty body", body: ``},
		{name: "missing content", body: `{"text":"hi"}`},
		{name: "null content", body: `{"content":null}`},
		{name: "number content", body: `{"content":42}`},
		{name: "array body", body: `["hi"]`},
		{name: "trailing data", body: `{"content":"a"} trailing`},
		{name: "second object", body: `{"content":"a"}{"content":"b"}`},
		{name: "trailing brace", body: `{"content":"a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, root := newTestNoteHandler(t, 0)

			rec := call(h.Save, http.MethodPost, "note.md", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NoFileExists(t, filepath.Join(root, "note.md"))
		})
	}
}

func TestNoteHandler_SaveEmptyContent(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)

	rec := call(h.Save, http.MethodPost, "blank.md", `{"content":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := os.ReadFile(filepath.Join(root, "blank.md"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNoteHandler_SaveTrailingWhitespace(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)

	rec := call(h.Save, http.MethodPost, "ws.md", "{\"content\":\"a\"}\n  \n")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.FileExists(t, filepath.Join(root, "ws.md"))
}

func TestNoteHandler_SaveReadOnlyNote(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)
	path := filepath.Join(root, "ro.md")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))
	require.NoError(t, os.Chmod(path, 0o400))

	rec := call(h.Save, http.MethodPost, "ro.md", `{"content":"new"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body response.ErrorBody
	decode(t, rec, &body)
	assert.True(t, strings.HasPrefix(body.Detail, "Error saving file: "), body.Detail)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestNoteHandler_SaveBodyTooLarge(t *testing.T) {
	h, root := newTestNoteHandler(t, 32)

	rec := call(h.Save, http.MethodPost, "big.md", `{"content":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.NoFileExists(t, filepath.Join(root, "big.md"))
}

func TestNoteHandler_SaveInvalidName(t *testing.T) {
	h, _ := newTestNoteHandler(t, 0)

	for _, name := range []string{"..", "..%2Fescape", "a%2Fb", "a%5Cb"} {
		rec := call(h.Save, http.MethodPost, name, `{"content":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		var body response.ErrorBody
		decode(t, rec, &body)
		assert.Equal(t, "Invalid filename.", body.Detail)
	}
}

func TestNoteHandler_GetMissingOrInvalid(t *testing.T) {
	h, _ := newTestNoteHandler(t, 0)

	for _, name := range []string{"missing.md", "..%2F..%2Fetc%2Fpasswd", ".."} {
		rec := call(h.Get, http.MethodGet, name, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, name)

		var body response.ErrorBody
		decode(t, rec, &body)
		assert.Equal(t, "File not found or access denied.", body.Detail)
	}
}

func TestNoteHandler_GetInvalidUTF8(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.md"), []byte{0xc3, 0x28}, 0o644))

	rec := call(h.Get, http.MethodGet, "bin.md", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body response.ErrorBody
	decode(t, rec, &body)
	assert.True(t, strings.HasPrefix(body.Detail, "Error reading file: "), body.Detail)
}

func TestNoteHandler_Delete(t *testing.T) {
	h, root := newTestNoteHandler(t, 0)
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.md"), []byte("x"), 0o644))

	rec := call(h.Delete, http.MethodDelete, "old.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"File 'old.md' deleted successfully."}`, rec.Body.String())
	assert.NoFileExists(t, filepath.Join(root, "old.md"))

	rec = call(h.Delete, http.MethodDelete, "old.md", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(h.Delete, http.MethodDelete, "missing.md", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
