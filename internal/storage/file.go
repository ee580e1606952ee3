package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/confetti/internal/config"
)

// FileStore keeps one JSON document per key in baseDir, optionally zstd
// compressed.
type FileStore struct {
	baseDir  string
	compress bool

	mu     sync.Mutex
	closed bool
}

func NewFileStore(baseDir string, compress bool) (*FileStore, error) {
	s := &FileStore{baseDir: baseDir, compress: compress}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) path(key string) string {
	if s.compress {
		return filepath.Join(s.baseDir, key+".json.zst")
	}
	return filepath.Join(s.baseDir, key+".json")
}

func (s *FileStore) Get(key string) (config.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	file, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	var r io.Reader = file
	if s.compress {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, false, err
		}
		defer dec.Close()
		r = dec
	}

	var snap config.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return snap.Normalize(), true, nil
}

// Set writes the document to a temporary file and renames it over the
// previous one.
func (s *FileStore) Set(key string, snap config.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	final := s.path(key)
	tmp, err := os.CreateTemp(s.baseDir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := s.encode(tmp, snap); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), final)
}

func (s *FileStore) encode(w io.Writer, snap config.Snapshot) error {
	if !s.compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Keys lists the stored keys.
func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	suffix := ".json"
	if s.compress {
		suffix = ".json.zst"
	}
	keys := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), suffix))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
