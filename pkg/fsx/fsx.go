// Package fsx abstracts where uploaded record PDFs are kept.
package fsx

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a path does not exist.
var ErrNotFound = errors.New("fsx: file not found")

// FileInfo represents information about a stored file
type FileInfo struct {
	Name        string    // Base name of the file
	Size        int64     // File size in bytes
	ModTime     time.Time // Modification time
	ContentType string    // MIME type (when available)
}

// FileReader provides read-only operations
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// FileWriter provides write operations
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}

// FileDeleter provides deletion operations
type FileDeleter interface {
	DeleteFile(ctx context.Context, path string) error
}

// PathOperations provides path manipulation functionality
type PathOperations interface {
	Join(elem ...string) string
}

// FileSystem combines all file operations
type FileSystem interface {
	FileReader
	FileWriter
	FileDeleter
	PathOperations
}

// ContentTypeOf maps a file extension to its MIME type.
func ContentTypeOf(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
