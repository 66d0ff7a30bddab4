package json

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Writer handles file writing operations. Writes go to a sibling temp file
// which is then renamed over the target.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a new filesystem writer
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// WriteJSON writes data as two-space indented JSON to the specified path
func (w *Writer) WriteJSON(path string, data any) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return w.WriteBytes(path, append(content, '\n'))
}

// WriteBytes writes raw bytes to the specified path
func (w *Writer) WriteBytes(path string, data []byte) error {
	if err := w.ensureDir(path); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(w.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := w.fs.Rename(tmp, path); err != nil {
		_ = w.fs.Remove(tmp)
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}

	return nil
}

// MkdirAll creates dir and any missing parents.
func (w *Writer) MkdirAll(dir string) error {
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// ensureDir ensures the parent directory of a file exists
func (w *Writer) ensureDir(path string) error {
	return w.MkdirAll(filepath.Dir(path))
}
