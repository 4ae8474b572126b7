package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonwraymond/fontops/observe"
)

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned int
	Removed int
	Failed  int
}

// Sweep deletes composite artifacts, and abandoned temporary files, whose
// modification time is older than maxAge. Files whose modification time
// cannot be read are treated as expired. Singleton artifacts are never
// removed.
func (s *FileStore) Sweep(ctx context.Context, maxAge time.Duration) (SweepResult, error) {
	var res SweepResult
	cutoff := s.now().Add(-maxAge)

	fonts, err := os.ReadDir(s.root)
	if err != nil {
		return res, err
	}
	for _, fontDir := range fonts {
		if !fontDir.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, fontDir.Name(), "cache")
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			s.logger.Warn(ctx, "sweep skipped font directory",
				observe.Field{Key: "path", Value: dir},
				observe.Field{Key: "error", Value: err.Error()},
			)
			res.Failed++
			continue
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			name := e.Name()
			isArtifact := strings.HasSuffix(name, ".woff2")
			if e.IsDir() || (!isArtifact && !isTemp(name)) {
				continue
			}
			res.Scanned++
			if info, err := e.Info(); err == nil && !info.ModTime().Before(cutoff) {
				continue
			}
			err := os.Remove(filepath.Join(dir, name))
			if isArtifact {
				s.hot.Invalidate(ctx, s.keyer.Key(fontDir.Name(), strings.TrimSuffix(name, ".woff2")))
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				res.Failed++
				continue
			}
			res.Removed++
		}
	}

	s.logger.Info(ctx, "artifact sweep completed",
		observe.Field{Key: "scanned", Value: res.Scanned},
		observe.Field{Key: "removed", Value: res.Removed},
		observe.Field{Key: "failed", Value: res.Failed},
	)
	return res, nil
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".tmp-")
}

// Sweeper runs Sweep on a fixed interval until its context ends.
type Sweeper struct {
	Store    *FileStore
	MaxAge   time.Duration
	Interval time.Duration
}

// Run sweeps once immediately and then every Interval.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		if _, err := w.Store.Sweep(ctx, w.MaxAge); err != nil && ctx.Err() == nil {
			w.Store.logger.Error(ctx, "artifact sweep failed", observe.Field{Key: "error", Value: err.Error()})
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
