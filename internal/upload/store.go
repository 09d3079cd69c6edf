// Package upload stores multipart image uploads on disk.
//
// Files are accepted only when their content sniffs as one of the allowed
// image types; the client-supplied Content-Type header is not trusted.
// Stored names are derived from the original filename with spaces
// replaced by dashes, plus a uniqueness suffix and the extension mapped
// from the detected type.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrInvalidImageType = errors.New("invalid image type")
	ErrNoFile           = errors.New("no file uploaded")
)

// fileTypeMap maps accepted MIME types to stored file extensions
var fileTypeMap = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Store defines the interface for persisting uploaded images and
// resolving their public URLs
type Store interface {
	Save(file *multipart.FileHeader) (string, error)
	URL(r *http.Request, filename string) string
}

// DiskStore persists uploads under a fixed directory
type DiskStore struct {
	dir string
	// publicPath is the URL path prefix the directory is served under
	publicPath string
}

// NewDiskStore creates the upload directory if needed and returns a store
// writing into it.
func NewDiskStore(dir, publicPath string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &DiskStore{dir: dir, publicPath: publicPath}, nil
}

// Save validates the file's content type and writes it to disk, returning
// the stored filename.
func (s *DiskStore) Save(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	ext, ok := fileTypeMap[mtype.String()]
	if !ok {
		return "", ErrInvalidImageType
	}

	// DetectReader consumed the head of the stream
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	name := storedName(file.Filename, ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write stored file: %w", err)
	}

	return name, nil
}

// storedName derives the on-disk filename: original name with spaces
// replaced by dashes, a timestamp plus short random suffix against
// collisions, and the extension mapped from the detected type.
func storedName(original, ext string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" {
		base = "upload"
	}

	suffix := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s.%s", base, suffix, ext)
}

// URL builds the absolute URL of a stored file from the live request's
// scheme and host.
func (s *DiskStore) URL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	return fmt.Sprintf("%s://%s%s/%s", scheme, r.Host, s.publicPath, filename)
}

// Dir returns the directory uploads are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}
