package adapter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/covlink/internal/model"
)

// LookupFileName is the shared lookup file correlating segment numbers with
// test identifiers, one per log directory.
const LookupFileName = "dump-lookup.log"

// DumpStore persists flushed coverage segments and the lookup table. It
// intentionally hides direct filesystem access so the session logic can be
// tested without touching the disk.
type DumpStore interface {
	// CreateSegment creates the numbered dump file for one flush. A
	// failure here is recoverable: the segment is lost but the session
	// continues.
	CreateSegment(name string) (io.WriteCloser, error)

	// AppendLookup appends one `key;identifier` line and flushes it to
	// durable storage immediately, since the lookup file is the join key
	// for every dump and must survive abrupt termination.
	AppendLookup(key, identifier string) error

	// WriteModules renders the loaded-image list to a YAML file.
	WriteModules(path m.Path, images []m.Image) error

	Close() error
}

// LocalDumpStore writes segments and the lookup file into a log directory on
// the local filesystem.
type LocalDumpStore struct {
	dir    string
	lookup *os.File
}

// NewLocalDumpStore creates the log directory and opens the lookup file.
// Both failures are fatal at startup: without them no dump is ever
// correlatable. When appendLookup is set the lookup file is opened in append
// mode so that followed child processes interleave their entries.
func NewLocalDumpStore(dir m.Path, appendLookup bool) (*LocalDumpStore, error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendLookup {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	lookupPath := filepath.Join(string(dir), LookupFileName)

	// #nosec G304 - lookupPath is derived from the operator's log directory
	lookup, err := os.OpenFile(lookupPath, flags, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open lookup file %s: %w", lookupPath, err)
	}

	return &LocalDumpStore{dir: string(dir), lookup: lookup}, nil
}

// CreateSegment creates a fresh dump file under the log directory.
func (s *LocalDumpStore) CreateSegment(name string) (io.WriteCloser, error) {
	// #nosec G304 - name is a generated tag+sequence file name
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}

	return f, nil
}

// AppendLookup writes one lookup line and syncs the file.
func (s *LocalDumpStore) AppendLookup(key, identifier string) error {
	if _, err := fmt.Fprintf(s.lookup, "%s;%s\n", key, identifier); err != nil {
		return fmt.Errorf("append lookup entry %s: %w", key, err)
	}

	if err := s.lookup.Sync(); err != nil {
		return fmt.Errorf("sync lookup file: %w", err)
	}

	return nil
}

// WriteModules writes the loaded-image list as YAML.
func (s *LocalDumpStore) WriteModules(path m.Path, images []m.Image) error {
	data, err := yaml.Marshal(images)
	if err != nil {
		return fmt.Errorf("marshal module list: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o640); err != nil {
		return fmt.Errorf("write module list %s: %w", path, err)
	}

	return nil
}

// Close closes the lookup file.
func (s *LocalDumpStore) Close() error {
	return s.lookup.Close()
}
