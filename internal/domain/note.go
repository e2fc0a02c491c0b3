package domain

import "time"

const NoteExtension = ".md"

type Note struct {
	Name    string `json:"filename"`
	Content string `json:"content"`
}

// SaveNoteRequest is the body of POST /api/files/{filename}. Content is a
// pointer so an empty note is accepted while a missing field is not.
type SaveNoteRequest struct {
	Content *string `json:"content" validate:"required"`
}

type FileListResponse struct {
	Files []string `json:"files"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type NoteEventOp string

const (
	NoteCreated NoteEventOp = "created"
	NoteWritten NoteEventOp = "written"
	NoteRemoved NoteEventOp = "removed"
	NoteRenamed NoteEventOp = "renamed"
)

// NoteEvent is pushed to change feed subscribers. It is never persisted.
// Op is "created" the first time a name appears in the notes directory and
// "written" for every later save, whether it edits in place or replaces the
// file.
type NoteEvent struct {
	Name string      `json:"name"`
	Op   NoteEventOp `json:"op"`
	At   time.Time   `json:"at"`
}
