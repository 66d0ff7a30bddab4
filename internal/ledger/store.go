package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/zklink-protocol/starknet-deployer/internal/infra/filesystem"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

// Logical deployment names. The file for a name lives at <dir>/<name>_<NET>.log.
const (
	NameZklink    = "deploy"
	NameMulticall = "deploy_multicall"
	NameFaucet    = "deploy_token"
)

type Store interface {
	Load(name string) (Record, error)
	Save(name string, record Record) error
}

// FileStore keeps one JSON document per logical deployment name. It assumes a
// single writer; concurrent invocations against the same file are not guarded.
type FileStore struct {
	dir     string
	network string
	reader  filesystem.Reader
	writer  filesystem.Writer
	logger  *slog.Logger
}

func NewFileStore(dir, network string, reader filesystem.Reader, writer filesystem.Writer) *FileStore {
	return &FileStore{
		dir:     dir,
		network: network,
		reader:  reader,
		writer:  writer,
		logger:  logger.Named("ledger"),
	}
}

// Path returns the file backing the given logical deployment.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.log", name, s.network))
}

// Load returns the stored record, or an empty one when nothing was saved yet.
// The log directory is created if missing.
func (s *FileStore) Load(name string) (Record, error) {
	if err := s.writer.MkdirAll(s.dir); err != nil {
		return nil, fmt.Errorf("failed to create deployment log directory '%s': %w", s.dir, err)
	}

	path := s.Path(name)

	record := Record{}
	if err := s.reader.ReadJSON(path, &record); err != nil {
		if errors.Is(err, filesystem.ErrNotExist) {
			s.logger.With("path", path).Debug("no deployment log yet, starting empty")
			return Record{}, nil
		}
		return nil, fmt.Errorf("failed to load deployment log '%s': %w", path, err)
	}

	s.logger.With("path", path, "keys", len(record)).Debug("deployment log loaded")

	return record, nil
}

func (s *FileStore) Save(name string, record Record) error {
	path := s.Path(name)
	if err := s.writer.WriteJSON(path, record); err != nil {
		return fmt.Errorf("failed to save deployment log '%s': %w", path, err)
	}

	return nil
}
