package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/confetti/internal/config"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{}
	for _, kind := range []string{KindMemory, KindFile, KindFileZstd, KindSQLite} {
		s, err := Open(kind, filepath.Join(t.TempDir(), "data"))
		if err != nil {
			t.Fatalf("Open(%s): %v", kind, err)
		}
		stores[kind] = s
	}
	return stores
}

func TestKeys(t *testing.T) {
	if got := DefaultsKey(SchemaVersion); got != "defaults.v1" {
		t.Errorf("DefaultsKey = %q", got)
	}
	if got := ConfigurationKey(SchemaVersion); got != "configuration.v1" {
		t.Errorf("ConfigurationKey = %q", got)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	snap := config.Default(nil).Flatten()
	snap["cfg.count.range-min"] = 60.0

	for kind, s := range openAll(t) {
		t.Run(kind, func(t *testing.T) {
			defer s.Close()

			if _, ok, err := s.Get(ConfigurationKey(1)); err != nil || ok {
				t.Fatalf("Get on empty store = %v, %v", ok, err)
			}
			if err := s.Set(ConfigurationKey(1), snap); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, ok, err := s.Get(ConfigurationKey(1))
			if err != nil || !ok {
				t.Fatalf("Get = %v, %v", ok, err)
			}
			if len(got) != len(snap) {
				t.Fatalf("got %d entries, want %d", len(got), len(snap))
			}
			for k, v := range snap {
				if got[k] != v {
					t.Errorf("%s = %v (%T), want %v", k, got[k], got[k], v)
				}
			}

			snap2 := snap.Clone()
			snap2["cfg.ui.showFps"] = false
			if err := s.Set(ConfigurationKey(1), snap2); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _, _ = s.Get(ConfigurationKey(1))
			if got["cfg.ui.showFps"] != false {
				t.Errorf("overwrite not visible: %v", got["cfg.ui.showFps"])
			}
		})
	}
}

func TestStoreClosed(t *testing.T) {
	for kind, s := range openAll(t) {
		t.Run(kind, func(t *testing.T) {
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, _, err := s.Get("k"); !errors.Is(err, ErrClosed) {
				t.Errorf("Get after Close = %v, want ErrClosed", err)
			}
			if err := s.Set("k", config.Snapshot{}); !errors.Is(err, ErrClosed) {
				t.Errorf("Set after Close = %v, want ErrClosed", err)
			}
		})
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open("tape", t.TempDir()); err == nil {
		t.Error("expected error for unknown store kind")
	}
}

func TestFileStoreKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Set(DefaultsKey(1), config.Snapshot{"cfg.a": 1.0})
	_ = s.Set(ConfigurationKey(1), config.Snapshot{"cfg.a": 2.0})

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "configuration.v1" || keys[1] != "defaults.v1" {
		t.Errorf("Keys() = %v", keys)
	}
}

type failingStore struct{}

func (failingStore) Get(string) (config.Snapshot, bool, error) { return nil, false, nil }
func (failingStore) Set(string, config.Snapshot) error         { return errors.New("disk full") }
func (failingStore) Close() error                              { return nil }

func TestWriterOrdered(t *testing.T) {
	mem := NewMemoryStore()
	w := NewWriter(mem, nil)

	for i := 0; i < 100; i++ {
		w.Set("k", config.Snapshot{"cfg.n": float64(i)})
	}
	w.Flush()

	got, ok, _ := mem.Get("k")
	if !ok || got["cfg.n"] != 99.0 {
		t.Errorf("after flush cfg.n = %v, want 99", got["cfg.n"])
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	w.Set("k", config.Snapshot{"cfg.n": -1.0})
	got, _, _ = mem.Get("k")
	if got["cfg.n"] != 99.0 {
		t.Errorf("write after Close applied")
	}
}

func TestWriterCopiesSnapshot(t *testing.T) {
	mem := NewMemoryStore()
	w := NewWriter(mem, nil)
	defer w.Close()

	snap := config.Snapshot{"cfg.n": 1.0}
	w.Set("k", snap)
	snap["cfg.n"] = 2.0
	w.Flush()

	got, _, _ := mem.Get("k")
	if got["cfg.n"] != 1.0 {
		t.Errorf("cfg.n = %v, want the value at Set time", got["cfg.n"])
	}
}

func TestWriterFailures(t *testing.T) {
	w := NewWriter(failingStore{}, nil)
	w.Set("a", config.Snapshot{})
	w.Set("b", config.Snapshot{})
	w.Close()
	if w.Failed() != 2 {
		t.Errorf("Failed() = %d, want 2", w.Failed())
	}
}

func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl.zst")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for session := 0; session < 2; session++ {
		j, err := OpenJournal(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := j.Append(JournalEntry{Time: now, Path: "cfg.count.range-min", Value: float64(session)}); err != nil {
			t.Fatal(err)
		}
		if err := j.Append(JournalEntry{Time: now, Path: "cfg.ui.showFps", Value: session == 0}); err != nil {
			t.Fatal(err)
		}
		if err := j.Close(); err != nil {
			t.Fatal(err)
		}
		if err := j.Append(JournalEntry{}); !errors.Is(err, ErrClosed) {
			t.Errorf("Append after Close = %v", err)
		}
	}

	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("read %d entries, want 4", len(entries))
	}
	if entries[2].Path != "cfg.count.range-min" || entries[2].Value != 1.0 {
		t.Errorf("entry 2 = %+v", entries[2])
	}
	if entries[3].Value != false || !entries[3].Time.Equal(now) {
		t.Errorf("entry 3 = %+v", entries[3])
	}
}

func TestJournalReadWhileOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl.zst")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	for i := 0; i < 3; i++ {
		if err := j.Append(JournalEntry{Path: "cfg.fade.t0", Value: float64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("read %d entries from an open journal, want 3", len(entries))
	}
	if entries[2].Value != 2.0 {
		t.Errorf("entry 2 = %+v", entries[2])
	}
}

func TestReadJournalMissing(t *testing.T) {
	entries, err := ReadJournal(filepath.Join(t.TempDir(), "none.zst"))
	if err != nil || len(entries) != 0 {
		t.Errorf("ReadJournal on missing file = %v, %v", entries, err)
	}
}
