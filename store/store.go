package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonwraymond/fontops/cache"
	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/observe"
	"github.com/jonwraymond/fontops/resilience"
	"github.com/jonwraymond/fontops/woff2"
)

// Artifact is an encoded font file. It is immutable once returned.
type Artifact struct {
	Bytes       []byte
	ContentType string
}

func newArtifact(b []byte) Artifact {
	return Artifact{Bytes: b, ContentType: woff2.ContentType}
}

// Store reads and writes artifacts by font id and code point key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Read returns ErrNotFound on a miss; other failures wrap
//   ErrStorageFailure.
// - Atomicity: Write replaces an artifact as a whole.
type Store interface {
	Read(ctx context.Context, fontID string, key codepoint.Key) (Artifact, error)
	Write(ctx context.Context, fontID string, key codepoint.Key, data []byte) error
}

// Config configures a FileStore.
type Config struct {
	// Root is the artifact root directory. Required.
	Root string

	// Hot is an optional in-memory layer in front of the filesystem.
	Hot cache.Cache

	// HotPolicy governs the hot layer. Default: cache.DefaultPolicy().
	HotPolicy *cache.Policy

	// Writes wraps artifact writes. Default: a circuit breaker around
	// 3 attempts with a 50ms initial delay.
	Writes *resilience.Executor

	// Logger receives write and sweep diagnostics. Default: no-op.
	Logger observe.Logger

	// FileMode and DirMode default to 0o644 and 0o755.
	FileMode os.FileMode
	DirMode  os.FileMode
}

// FileStore is a Store on the local filesystem.
type FileStore struct {
	root   string
	hot    *cache.ReadThrough
	keyer  cache.Keyer
	writes *resilience.Executor
	logger observe.Logger
	permF  os.FileMode
	permD  os.FileMode
	now    func() time.Time
}

// NewFileStore creates the root directory if needed and returns a store.
func NewFileStore(cfg Config) (*FileStore, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("%w: root is required", ErrInvalidPath)
	}
	s := &FileStore{
		root:   cfg.Root,
		keyer:  cache.NewDefaultKeyer(),
		writes: cfg.Writes,
		logger: cfg.Logger,
		permF:  cfg.FileMode,
		permD:  cfg.DirMode,
		now:    time.Now,
	}
	if s.permF == 0 {
		s.permF = 0o644
	}
	if s.permD == 0 {
		s.permD = 0o755
	}
	if s.logger == nil {
		s.logger = observe.NopLogger()
	}
	if s.writes == nil {
		s.writes = resilience.NewExecutor(
			resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
				MaxFailures:  5,
				ResetTimeout: 30 * time.Second,
			})),
			resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 50 * time.Millisecond,
				Jitter:       true,
			})),
		)
	}
	if cfg.Hot != nil {
		policy := cache.DefaultPolicy()
		if cfg.HotPolicy != nil {
			policy = *cfg.HotPolicy
		}
		s.hot = cache.NewReadThrough(cfg.Hot, policy)
	} else {
		s.hot = cache.NewReadThrough(nil, cache.NoCachePolicy())
	}

	if err := os.MkdirAll(s.root, s.permD); err != nil {
		return nil, fmt.Errorf("%w: create root: %v", ErrStorageFailure, err)
	}
	return s, nil
}

// Root returns the artifact root directory.
func (s *FileStore) Root() string { return s.root }

// Path maps a font id and key to the artifact file path.
func (s *FileStore) Path(fontID string, key codepoint.Key) (string, error) {
	if fontID == "" || !filepath.IsLocal(fontID) || strings.ContainsAny(fontID, `/\`) {
		return "", fmt.Errorf("%w: font id %q", ErrInvalidPath, fontID)
	}
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidPath)
	}
	return filepath.Join(s.root, fontID, filepath.FromSlash(key.Path())), nil
}

// Read returns the artifact for fontID and key.
func (s *FileStore) Read(ctx context.Context, fontID string, key codepoint.Key) (Artifact, error) {
	path, err := s.Path(fontID, key)
	if err != nil {
		return Artifact{}, err
	}
	data, _, err := s.hot.Get(ctx, s.keyer.Key(fontID, key.String()), func(context.Context) ([]byte, error) {
		return os.ReadFile(path)
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, ErrNotFound
		}
		return Artifact{}, fmt.Errorf("%w: read %s: %v", ErrStorageFailure, path, err)
	}
	return newArtifact(data), nil
}

// Exists reports whether an artifact is persisted for fontID and key.
func (s *FileStore) Exists(_ context.Context, fontID string, key codepoint.Key) (bool, error) {
	path, err := s.Path(fontID, key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: stat %s: %v", ErrStorageFailure, path, err)
	}
}

// Write atomically publishes data as the artifact for fontID and key,
// replacing any previous artifact.
func (s *FileStore) Write(ctx context.Context, fontID string, key codepoint.Key, data []byte) error {
	path, err := s.Path(fontID, key)
	if err != nil {
		return err
	}
	cacheKey := s.keyer.Key(fontID, key.String())
	s.hot.Invalidate(ctx, cacheKey)

	attempt := 0
	err = s.writes.Execute(ctx, func(ctx context.Context) error {
		attempt++
		if err := os.MkdirAll(filepath.Dir(path), s.permD); err != nil {
			return err
		}
		return writeAtomic(ctx, path, data, s.permF)
	})
	if err != nil {
		s.logger.Error(ctx, "artifact write failed",
			observe.Field{Key: "font.id", Value: fontID},
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "attempts", Value: attempt},
			observe.Field{Key: "error", Value: err.Error()},
		)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		return fmt.Errorf("%w: write %s: %w", ErrStorageFailure, path, err)
	}
	s.hot.Put(ctx, cacheKey, data)
	return nil
}

// Delete removes the artifact for fontID and key. Idempotent.
func (s *FileStore) Delete(ctx context.Context, fontID string, key codepoint.Key) error {
	path, err := s.Path(fontID, key)
	if err != nil {
		return err
	}
	cacheKey := s.keyer.Key(fontID, key.String())
	s.hot.Invalidate(ctx, cacheKey)
	err = os.Remove(path)
	// Drops copies loaded by readers that raced the removal.
	s.hot.Invalidate(ctx, cacheKey)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: delete %s: %v", ErrStorageFailure, path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
