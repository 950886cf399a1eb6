package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

// FileStore writes stage artifacts into a single output directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger}
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns where name is (or would be) written.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write replaces name atomically via a temp file and rename.
func (s *FileStore) Write(name string, content []byte) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.NewStoreError(fmt.Sprintf("invalid artifact name %q", name), "write", name, nil)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.NewStoreError("failed to create artifact directory", "mkdir", s.dir, err)
	}

	target := s.Path(name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return errors.NewStoreError("failed to write artifact", "write", target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return errors.NewStoreError("failed to finalize artifact", "rename", target, err)
	}

	s.logger.Debug("Artifact written", zap.String("path", target), zap.Int("bytes", len(content)))
	return nil
}

func (s *FileStore) WriteJSON(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.NewStoreError("failed to encode artifact", "marshal", name, err)
	}
	return s.Write(name, data)
}
