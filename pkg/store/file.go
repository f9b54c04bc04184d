package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/opsdeck/sopgraph/pkg/errors"
)

// FileStore keeps one JSON document per procedure in a directory. It backs
// single-node deployments and the CLI.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based procedure store.
// If baseDir is empty, defaults to ~/.config/sopgraph/procedures/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "sopgraph", "procedures")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create procedure dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// procedurePath maps an id to its file. Ids are validated first so a crafted
// id cannot escape the base directory.
func (s *FileStore) procedurePath(id string) (string, error) {
	if err := errors.ValidateProcedureID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Procedure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.procedurePath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read procedure file: %w", err)
	}

	var p Procedure
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse procedure %s: %w", id, err)
	}
	return &p, nil
}

func (s *FileStore) Put(ctx context.Context, p *Procedure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.procedurePath(p.ID)
	if err != nil {
		return err
	}

	stamp(p)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal procedure: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write procedure file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*Procedure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read procedure dir: %w", err)
	}

	var out []*Procedure
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var p Procedure
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		if p.ID == "" {
			p.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.procedurePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove procedure file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for procedure files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
