// Package session persists the client's login state between runs.
//
// The state is a single JSON object kept in one file under the client's
// state directory, optionally run through an Obfuscator first.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"streamgate/internal/model"
)

// FileName is the well-known name of the session file
const FileName = "session.json"

// Store loads, saves and clears the local session
type Store interface {
	// Load returns (nil, nil) when nothing is stored
	Load() (*model.LocalSession, error)
	Save(s *model.LocalSession) error
	Clear() error
}

// FileStore keeps the session in dir/session.json
type FileStore struct {
	path string
	obf  *Obfuscator
}

// NewFileStore creates a store in dir. A nil obf stores plain JSON.
func NewFileStore(dir string, obf *Obfuscator) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName), obf: obf}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*model.LocalSession, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	data = bytes.TrimSpace(data)
	// plain JSON is accepted even with obfuscation on, so turning the
	// option on does not log everyone out
	if s.obf != nil && !bytes.HasPrefix(data, []byte("{")) {
		if data, err = s.obf.Decode(string(data)); err != nil {
			return nil, err
		}
	}

	var sess model.LocalSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}

func (s *FileStore) Save(sess *model.LocalSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if s.obf != nil {
		data = []byte(s.obf.Encode(data))
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in memory
type MemoryStore struct {
	mu   sync.Mutex
	sess *model.LocalSession
}

func (m *MemoryStore) Load() (*model.LocalSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *MemoryStore) Save(s *model.LocalSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sess = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
