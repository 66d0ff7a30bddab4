package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/filesystem"
)

// Reader handles file reading operations
type Reader struct {
	fs afero.Fs
}

// NewReader creates a new filesystem reader
func NewReader(fs afero.Fs) *Reader {
	return &Reader{fs: fs}
}

// ReadJSON reads and unmarshals JSON from a file. Numbers decode as json.Number
// when the target is untyped, so block numbers survive a round trip unchanged.
func (r *Reader) ReadJSON(path string, target any) error {
	data, err := r.ReadBytes(path)
	if err != nil {
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// ReadBytes reads the raw file content
func (r *Reader) ReadBytes(path string) ([]byte, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("'%s': %w", path, filesystem.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}
