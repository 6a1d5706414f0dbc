package models

import "context"

// File is a lightweight in-memory attachment.
// Name is used for display; MIME should be best-effort (e.g., "image/png").
type File struct {
	Name string
	MIME string
	Data []byte
}

// Agent is a chat-completion backend. Implementations send a single user turn and
// return the raw reply text. When constructed in JSON mode the reply is constrained
// to one JSON object.
type Agent interface {
	Generate(context.Context, string) (string, error)
	GenerateWithFiles(context.Context, string, []File) (string, error)
}
