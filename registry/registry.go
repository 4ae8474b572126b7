package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/flopp/go-findfont"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/fontops/observe"
)

// Config configures a Registry.
type Config struct {
	// Dir is the fonts root; each subdirectory holds one descriptor.
	Dir string

	// Logger receives per-directory load problems. Default: no-op.
	Logger observe.Logger

	// FindSystemFont locates a font file by bare file name when it is not
	// present in the descriptor directory. Default: findfont.Find.
	FindSystemFont func(name string) (string, error)
}

// Registry owns the current Snapshot.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use.
// - Reload never leaves a partially built snapshot visible.
type Registry struct {
	cfg     Config
	current atomic.Pointer[Snapshot]
	reloads singleflight.Group
}

// New loads the fonts under cfg.Dir.
func New(ctx context.Context, cfg Config) (*Registry, error) {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.FindSystemFont == nil {
		cfg.FindSystemFont = findfont.Find
	}
	r := &Registry{cfg: cfg}
	if _, err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStatic returns a Registry serving a fixed snapshot. Reload on it
// fails; Replace still works.
func NewStatic(s *Snapshot) *Registry {
	r := &Registry{cfg: Config{Logger: observe.NopLogger()}}
	r.current.Store(s)
	return r
}

// Snapshot returns the current snapshot.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Replace publishes s as the current snapshot.
func (r *Registry) Replace(s *Snapshot) {
	r.current.Store(s)
}

// Reload re-reads the fonts directory and swaps in the new snapshot.
// Concurrent calls share one load. On error the previous snapshot stays.
func (r *Registry) Reload(ctx context.Context) (*Snapshot, error) {
	if r.cfg.Dir == "" {
		return nil, fmt.Errorf("%w: no fonts directory configured", ErrInvalidDescriptor)
	}
	v, err, _ := r.reloads.Do("reload", func() (any, error) {
		s, err := Load(ctx, r.cfg)
		if err != nil {
			return nil, err
		}
		r.current.Store(s)
		r.cfg.Logger.Info(ctx, "font registry loaded",
			observe.Field{Key: "fonts", Value: s.Len()},
			observe.Field{Key: "dir", Value: r.cfg.Dir},
		)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Load builds a snapshot from the descriptor directories under cfg.Dir.
// A directory with a missing or broken descriptor or font file is logged
// and skipped. Fallback ids naming no loaded font are logged and dropped;
// duplicate ids and fallback cycles fail the whole load.
func Load(ctx context.Context, cfg Config) (*Snapshot, error) {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("registry: read fonts dir: %w", err)
	}

	var fonts []*Font
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(cfg.Dir, e.Name())
		f, err := loadDir(dir, cfg.FindSystemFont)
		if err != nil {
			cfg.Logger.Warn(ctx, "skipping font directory",
				observe.Field{Key: "dir", Value: dir},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		fonts = append(fonts, f)
	}
	dropDanglingFallbacks(ctx, cfg.Logger, fonts)
	return NewSnapshot(fonts...)
}

func dropDanglingFallbacks(ctx context.Context, log observe.Logger, fonts []*Font) {
	loaded := make(map[string]bool, len(fonts))
	for _, f := range fonts {
		loaded[f.desc.ID] = true
	}
	for _, f := range fonts {
		kept := f.desc.Fallback[:0:0]
		for _, fb := range f.desc.Fallback {
			if !loaded[fb] {
				log.Warn(ctx, "dropping unknown fallback",
					observe.Field{Key: "font", Value: f.desc.ID},
					observe.Field{Key: "fallback", Value: fb},
				)
				continue
			}
			kept = append(kept, fb)
		}
		f.desc.Fallback = kept
	}
}

func loadDir(dir string, find func(string) (string, error)) (*Font, error) {
	raw, err := os.ReadFile(filepath.Join(dir, DescriptorFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	var desc Descriptor
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, dir, err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	names := desc.FontFiles()
	paths := make([]string, len(names))
	files := make([][]byte, len(names))
	for i, name := range names {
		path, err := resolveFontFile(dir, name, find)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontFile, err)
		}
		paths[i], files[i] = path, data
	}
	f, err := NewFont(desc, files...)
	if err != nil {
		return nil, err
	}
	for i, fc := range f.faces {
		fc.path = paths[i]
	}
	return f, nil
}

// resolveFontFile looks in the descriptor directory first. Bare file names
// not found there are searched among the system fonts.
func resolveFontFile(dir, name string, find func(string) (string, error)) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: font file %q escapes %s", ErrInvalidDescriptor, name, dir)
	}
	local := filepath.Join(dir, name)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %v", ErrFontFile, err)
	}

	if find != nil && filepath.Base(name) == name {
		if p, err := find(name); err == nil && p != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s not found", ErrFontFile, local)
}
