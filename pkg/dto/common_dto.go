package dto

import "io"

// AvatarFile is an uploaded profile picture read from a multipart form.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

// WriteResult reports a document write. Mock is set when no document store is configured and the
// write was only logged.
type WriteResult struct {
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Mock    bool   `json:"mock,omitempty"`
}
