package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sakif/devhub/internal/apperror"
)

// minimal valid PNG header, enough for content-type sniffing
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm() error = %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	headers := form.File["image"]
	if len(headers) != 1 {
		t.Fatalf("got %d file headers, want 1", len(headers))
	}
	file, err := headers[0].Open()
	if err != nil {
		t.Fatalf("opening part: %v", err)
	}
	t.Cleanup(func() { file.Close() })
	return file, headers[0]
}

func TestSaveStoresImage(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(dir)
	if err != nil {
		t.Fatalf("NewSaver() error = %v", err)
	}

	file, header := multipartFile(t, "avatar.png", pngBytes)
	path, err := saver.Save(file, header)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(path, "/uploads/") {
		t.Errorf("returned path %q, want a /uploads/ prefix", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("returned path %q, want a .png extension", path)
	}

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, "/uploads/")))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(stored, pngBytes) {
		t.Error("stored bytes differ from the upload")
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	saver, err := NewSaver(t.TempDir())
	if err != nil {
		t.Fatalf("NewSaver() error = %v", err)
	}

	file, header := multipartFile(t, "notes.txt", []byte("plain text, not an image"))
	_, err = saver.Save(file, header)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Save() non-image: error = %v, want ErrValidation", err)
	}
}

func TestSaveRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(dir)
	if err != nil {
		t.Fatalf("NewSaver() error = %v", err)
	}

	big := append(append([]byte{}, pngBytes...), make([]byte, MaxSize)...)
	file, header := multipartFile(t, "huge.png", big)
	_, err = saver.Save(file, header)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Save() oversize: error = %v, want ErrValidation", err)
	}

	// Nothing may be left behind on a rejected upload.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d entries after rejection, want 0", len(entries))
	}
}

func TestSaveUniqueNames(t *testing.T) {
	saver, err := NewSaver(t.TempDir())
	if err != nil {
		t.Fatalf("NewSaver() error = %v", err)
	}

	file1, header1 := multipartFile(t, "same.png", pngBytes)
	file2, header2 := multipartFile(t, "same.png", pngBytes)

	path1, err := saver.Save(file1, header1)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	path2, err := saver.Save(file2, header2)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path1 == path2 {
		t.Errorf("two uploads of the same filename mapped to the same path %q", path1)
	}
}
