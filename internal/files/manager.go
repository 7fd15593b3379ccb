package files

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/trekker/logger"
)

// ErrNotImage rejects uploads whose content does not look like an image.
var ErrNotImage = errors.New("only image files are allowed")

const uploadsDir = "uploads"

// Manager owns image resources under the public directory. Stored records
// reference them by public path ("/uploads/..."), and the manager is the
// only code that maps those references back to disk.
type Manager struct {
	publicDir string
}

func NewManager(publicDir string) *Manager {
	return &Manager{publicDir: publicDir}
}

// SaveUpload writes an uploaded image into public/uploads/<subdir> under a
// fresh unique name and returns its public path. Content is sniffed, not
// trusted from the declared header alone.
func (m *Manager) SaveUpload(subdir string, file multipart.File, header *multipart.FileHeader) (string, error) {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", ErrNotImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	dir := filepath.Join(m.publicDir, uploadsDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return "/" + path.Join(uploadsDir, subdir, name), nil
}

// DeleteIfExists removes the resource behind a public path. Best-effort:
// a miss or a failure is logged and reported, never escalated.
func (m *Manager) DeleteIfExists(publicPath string) bool {
	abs, err := m.resolve(publicPath)
	if err != nil {
		logger.Error.Printf("Refusing to delete %q: %v", publicPath, err)
		return false
	}

	if err := os.Remove(abs); err != nil {
		if !os.IsNotExist(err) {
			logger.Error.Printf("Failed to delete %s: %v", abs, err)
		}
		return false
	}
	return true
}

// resolve maps a public path to disk and rejects anything that escapes the
// uploads tree.
func (m *Manager) resolve(publicPath string) (string, error) {
	cleaned := path.Clean("/" + publicPath)
	if !strings.HasPrefix(cleaned, "/"+uploadsDir+"/") {
		return "", fmt.Errorf("path %q is outside the uploads tree", publicPath)
	}
	return filepath.Join(m.publicDir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}
