package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/plotline/plotline/internal/document"
)

const (
	exprExt = ".txt"
	metaExt = ".json"
)

type fileMeta struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileStore keeps each plot as <id>.txt, one expression per line, next to
// a small <id>.json holding its name.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*Plot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path(id, exprExt))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open plot: %w", err)
	}
	defer f.Close()

	exprs, err := document.ReadExpressions(f)
	if err != nil {
		return nil, err
	}
	meta, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	return &Plot{ID: id, Name: meta.Name, Expressions: exprs, UpdatedAt: meta.UpdatedAt}, nil
}

func (s *FileStore) Save(ctx context.Context, p *Plot) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	text, err := document.FormatExpressions(p.Expressions)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(fileMeta{Name: p.Name, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.path(p.ID, exprExt), []byte(text)); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	if err := writeFileAtomic(s.path(p.ID, metaExt), meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	summaries := []Summary{}
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), exprExt)
		if !ok || e.IsDir() || checkID(id) != nil {
			continue
		}
		data, err := os.ReadFile(s.path(id, exprExt))
		if err != nil {
			return nil, fmt.Errorf("read plot %s: %w", id, err)
		}
		exprs, err := document.ParseExpressions(string(data))
		if err != nil {
			return nil, err
		}
		meta, err := s.readMeta(id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{ID: id, Name: meta.Name, Graphs: len(exprs), UpdatedAt: meta.UpdatedAt})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id, exprExt)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete plot: %w", err)
	}
	if err := os.Remove(s.path(id, metaExt)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete meta: %w", err)
	}
	return nil
}

func (s *FileStore) path(id, ext string) string {
	return filepath.Join(s.dir, id+ext)
}

// readMeta tolerates a missing sidecar: plots dropped into the directory
// by hand are named after their id.
func (s *FileStore) readMeta(id string) (fileMeta, error) {
	meta := fileMeta{Name: id}
	data, err := os.ReadFile(s.path(id, metaExt))
	if errors.Is(err, fs.ErrNotExist) {
		if info, statErr := os.Stat(s.path(id, exprExt)); statErr == nil {
			meta.UpdatedAt = info.ModTime().UTC()
		}
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("read meta: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decode meta %s: %w", id, err)
	}
	return meta, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// checkID keeps ids inside the data directory.
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return nil
}
