// Package store persists the dpclient record as a single JSON file.
//
// Every access loads the whole document and every save rewrites it. Saves go
// through a temporary file that is renamed over the target, and Update/View
// hold an advisory lock on a sibling ".lock" file so two invocations cannot
// interleave their read-modify-write cycles.
package store

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dpclient/internal/apperr"
	"dpclient/internal/record"
)

const (
	// FileMode is the permission of the data file. It holds a plaintext password.
	FileMode = 0o600

	// DefaultRetryDelay is how often a blocked lock is retried.
	DefaultRetryDelay = 50 * time.Millisecond

	lockSuffix = ".lock"
)

// Store reads and writes the record at a fixed path.
type Store struct {
	path       string
	logger     *log.Logger
	retryDelay time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRetryDelay sets the lock polling interval.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retryDelay = d
		}
	}
}

// New returns a Store backed by the file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		logger:     log.New(io.Discard),
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the data file path.
func (s *Store) Path() string { return s.path }

// Load reads the record. A missing file is first created with the default record.
func (s *Store) Load(ctx context.Context) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("data file missing, writing default", "path", s.path)
		if err := s.Save(ctx, record.Default()); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(s.path)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, err, "read %s", s.path)
	}

	rec, err := record.Parse(data)
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) && e.Kind == apperr.CorruptData {
			e.Msg = s.path + ": " + e.Msg
		}
		return nil, err
	}
	if rec.Migrated() {
		s.logger.Debug("filled missing fields in data file", "path", s.path)
	}
	s.logger.Debug("loaded", "path", s.path, "tasks", rec.Tasks.Len())
	return rec, nil
}

// Save replaces the data file with rec. The file is never left half-written:
// the new content is written and synced to a temporary file in the same
// directory, which is then renamed over the old one.
func (s *Store) Save(ctx context.Context, rec *record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := rec.Marshal()
	if err != nil {
		return apperr.Wrap(apperr.IO, err, "encode record")
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	dir, base := filepath.Split(s.path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	if err := writeSynced(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return apperr.Wrap(apperr.IO, err, "write %s", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return apperr.Wrap(apperr.IO, err, "replace %s", s.path)
	}

	s.logger.Debug("saved", "path", s.path, "bytes", len(data))
	return nil
}

// Update runs fn on the loaded record under an exclusive lock and saves the
// record if fn returns nil. When fn fails nothing is written.
func (s *Store) Update(ctx context.Context, fn func(*record.Record) error) error {
	unlock, err := s.lock(ctx, false)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		s.logger.Debug("update aborted, not saving", "err", err)
		return err
	}
	return s.Save(ctx, rec)
}

// View runs fn on the loaded record under a shared lock. Nothing is saved,
// except that a missing file is still created with the default record.
func (s *Store) View(ctx context.Context, fn func(*record.Record) error) error {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		// Creating the file needs the exclusive lock.
		return s.Update(ctx, fn)
	}

	unlock, err := s.lock(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return fn(rec)
}

func (s *Store) lock(ctx context.Context, shared bool) (func(), error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	fl := flock.New(s.path + lockSuffix)
	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = fl.TryRLockContext(ctx, s.retryDelay)
	} else {
		locked, err = fl.TryLockContext(ctx, s.retryDelay)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperr.Wrap(apperr.IO, err, "lock %s", s.path)
	}
	if !locked {
		return nil, apperr.New(apperr.IO, "lock %s: not acquired", s.path)
	}

	s.logger.Debug("locked", "path", fl.Path(), "shared", shared)
	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("unlock failed", "path", fl.Path(), "err", err)
		}
	}, nil
}

func (s *Store) ensureDir() error {
	dir := filepath.Dir(s.path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperr.Wrap(apperr.IO, err, "create directory %s", dir)
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
