package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
	ErrTooLarge    = errors.New("file exceeds the maximum upload size")
)

type FileStorage interface {
	// Save writes at most maxSize bytes under key and returns the stored size.
	// A larger body fails with ErrTooLarge and leaves nothing behind.
	Save(ctx context.Context, file io.Reader, key string, maxSize int64) (int64, error)

	// Open retrieves a file
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, key string) error

	// Exists checks if file exists
	Exists(ctx context.Context, key string) (bool, error)
}

// AttachmentExtensions are the file types accepted as request attachments.
var AttachmentExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".gif", ".xlsx", ".xls", ".docx", ".doc", ".csv", ".txt"}

// AllowedExtension reports whether name ends in one of exts, ignoring case.
func AllowedExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range exts {
		if ext == allowed {
			return true
		}
	}
	return false
}
