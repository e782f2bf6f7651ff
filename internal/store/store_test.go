package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"dpclient/internal/apperr"
	"dpclient/internal/record"
	"dpclient/internal/store"
)

func newStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".dpclient")
	return store.New(path), path
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return v
}

func TestLoad_CreatesDefault(t *testing.T) {
	s, path := newStore(t)

	rec, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Server != "" || rec.User != "" || rec.Password != "" || rec.Tasks.Len() != 0 {
		t.Errorf("expected default record, got %+v", rec)
	}

	got := readJSON(t, path)
	want := map[string]any{"server": "", "user": "", "password": "", "tasks": map[string]any{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected file %v, got %v", want, got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != store.FileMode {
		t.Errorf("expected mode %o, got %o", store.FileMode, perm)
	}
}

func TestLoad_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")
	s := store.New(path)

	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected data file to exist: %v", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	s, path := newStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(context.Background())
	if !apperr.IsKind(err, apperr.CorruptData) {
		t.Fatalf("expected corrupt data error, got %v", err)
	}
}

func TestSaveLoad_RoundTripIsStable(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	rec := record.Default()
	rec.Server = "http://dp"
	rec.User = "jdoe"
	if _, err := record.SetTask(rec, "build", "T1"); err != nil {
		t.Fatal(err)
	}
	if _, err := record.SetTask(rec, "alpha", "T2"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		loaded, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if err := s.Save(ctx, loaded); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	again, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(again) {
		t.Errorf("file changed across load/save cycles\nbefore:\n%s\nafter:\n%s", first, again)
	}
}

func TestUpdate_SetConfigScenario(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(rec *record.Record) error {
		_, err := record.SetConfig(rec, "server", "http://x")
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Server != "http://x" {
		t.Errorf("expected server %q, got %q", "http://x", rec.Server)
	}
	if rec.User != "" || rec.Password != "" || rec.Tasks.Len() != 0 {
		t.Errorf("other fields changed: %+v", rec)
	}
}

func TestUpdate_ErrorSkipsSave(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	if _, err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = s.Update(ctx, func(rec *record.Record) error {
		rec.Server = "http://changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("file written despite error:\n%s", after)
	}
}

func TestUpdate_RewritesMigratedDocument(t *testing.T) {
	s, path := newStore(t)
	if err := os.WriteFile(path, []byte(`{"server":"http://old"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := s.Update(context.Background(), func(*record.Record) error { return nil }); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := readJSON(t, path)
	want := map[string]any{"server": "http://old", "user": "", "password": "", "tasks": map[string]any{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestView_DoesNotWrite(t *testing.T) {
	s, path := newStore(t)
	original := []byte(`{"server":"s","user":"u","password":"p","tasks":{"build":"T1"}}`)
	if err := os.WriteFile(path, original, 0o600); err != nil {
		t.Fatal(err)
	}

	var seen string
	err := s.View(context.Background(), func(rec *record.Record) error {
		seen, _ = rec.Tasks.Get("build")
		rec.Server = "mutated"
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if seen != "T1" {
		t.Errorf("expected T1, got %q", seen)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(original) {
		t.Errorf("view modified file:\n%s", after)
	}
}

func TestView_MissingFileCreatesDefault(t *testing.T) {
	s, path := newStore(t)

	if err := s.View(context.Background(), func(*record.Record) error { return nil }); err != nil {
		t.Fatalf("view: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default file: %v", err)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Save(ctx, record.Default()); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestSave_UnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	s := store.New(filepath.Join(dir, ".dpclient"))
	err := s.Save(context.Background(), record.Default())
	if !apperr.IsKind(err, apperr.IO) {
		t.Fatalf("expected i/o error, got %v", err)
	}
}

func TestUpdate_CancelledContext(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Update(ctx, func(*record.Record) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if called {
		t.Error("fn must not run with a cancelled context")
	}
}

func TestUpdate_ConcurrentWritersKeepEveryChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dpclient")
	const writers = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := store.New(path, store.WithRetryDelay(time.Millisecond))
			errs <- s.Update(context.Background(), func(rec *record.Record) error {
				_, err := record.SetTask(rec, fmt.Sprintf("task%d", i), fmt.Sprintf("T%d", i))
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	rec, err := store.New(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Tasks.Len(); got != writers {
		t.Errorf("expected %d tasks, got %d: %v", writers, got, rec.Tasks.Names())
	}
}

func TestUpdate_WaitsForHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dpclient")
	held := flock.New(path + ".lock")
	if err := held.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer held.Unlock()

	s := store.New(path, store.WithRetryDelay(5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	called := false
	err := s.Update(ctx, func(*record.Record) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if called {
		t.Error("fn ran without the lock")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("data file written without the lock: %v", err)
	}
}

func TestView_WaitsForExclusiveLock(t *testing.T) {
	s, path := newStore(t)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	held := flock.New(path + ".lock")
	if err := held.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer held.Unlock()

	viewer := store.New(path, store.WithRetryDelay(5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := viewer.View(ctx, func(*record.Record) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
