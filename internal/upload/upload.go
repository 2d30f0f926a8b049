// Package upload stores user-submitted images on disk.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/devhub/internal/apperror"
)

// MaxSize is the largest accepted upload, matching the multipart form limit
// the handlers parse with.
const MaxSize = 5 << 20 // 5 MiB

// Saver writes uploaded images into a single directory and hands back the
// URL path they will be served under.
type Saver struct {
	dir string
}

// NewSaver ensures the upload directory exists.
func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &Saver{dir: dir}, nil
}

// Dir returns the directory uploads are written to, for static file serving.
func (s *Saver) Dir() string {
	return s.dir
}

// Save validates and stores one uploaded image, returning its public path
// ("/uploads/<name>"). Only image content types are accepted, and files over
// MaxSize are rejected even if the client lied in the Content-Length header.
func (s *Saver) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxSize {
		return "", apperror.ValidationFailed("image", "image must be 5 MB or smaller")
	}

	// Sniff the actual content instead of trusting the client's header.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperror.ValidationFailed("image", "only image uploads are allowed")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding upload: %w", err)
	}

	name := uuid.NewString() + extensionFor(contentType, header.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	// io.LimitReader is the backstop: even a stream that misreported its
	// size cannot write more than MaxSize bytes to disk.
	written, err := io.Copy(dst, io.LimitReader(file, MaxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if written > MaxSize {
		os.Remove(path)
		return "", apperror.ValidationFailed("image", "image must be 5 MB or smaller")
	}

	return "/uploads/" + name, nil
}

// extensionFor prefers the original filename's extension and falls back to
// one derived from the sniffed content type.
func extensionFor(contentType, filename string) string {
	if ext := filepath.Ext(filename); ext != "" && len(ext) <= 5 {
		return strings.ToLower(ext)
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
