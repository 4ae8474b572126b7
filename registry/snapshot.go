package registry

import (
	"fmt"
	"sort"
	"time"
)

// Snapshot is an immutable set of fonts with a validated fallback graph.
type Snapshot struct {
	fonts    map[string]*Font
	ids      []string
	loadedAt time.Time
}

// NewSnapshot validates fonts as one registry. Duplicate ids, fallback
// references to fonts not in the set and fallback cycles are errors.
func NewSnapshot(fonts ...*Font) (*Snapshot, error) {
	s := &Snapshot{
		fonts:    make(map[string]*Font, len(fonts)),
		ids:      make([]string, 0, len(fonts)),
		loadedAt: time.Now(),
	}
	for _, f := range fonts {
		if _, dup := s.fonts[f.ID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFont, f.ID())
		}
		s.fonts[f.ID()] = f
		s.ids = append(s.ids, f.ID())
	}
	sort.Strings(s.ids)

	for _, id := range s.ids {
		for _, fb := range s.fonts[id].desc.Fallback {
			if _, ok := s.fonts[fb]; !ok {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownFallback, id, fb)
			}
		}
	}
	if err := s.checkAcyclic(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkAcyclic runs an iterative three-colour depth-first search over the
// fallback edges.
func (s *Snapshot) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(s.ids))

	type frame struct {
		id   string
		next int
	}
	for _, root := range s.ids {
		if color[root] != white {
			continue
		}
		stack := []frame{{id: root}}
		color[root] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := s.fonts[top.id].desc.Fallback
			if top.next == len(edges) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			to := edges[top.next]
			top.next++
			switch color[to] {
			case grey:
				return fmt.Errorf("%w: %s -> %s", ErrFallbackCycle, top.id, to)
			case white:
				color[to] = grey
				stack = append(stack, frame{id: to})
			}
		}
	}
	return nil
}

// Lookup returns the font with the given id.
func (s *Snapshot) Lookup(id string) (*Font, error) {
	f, ok := s.fonts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, id)
	}
	return f, nil
}

// HasGlyph reports whether font id maps r. Unknown ids report false.
func (s *Snapshot) HasGlyph(id string, r rune) bool {
	f, ok := s.fonts[id]
	return ok && f.HasGlyph(r)
}

// Fonts returns the fonts ordered by id.
func (s *Snapshot) Fonts() []*Font {
	out := make([]*Font, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.fonts[id]
	}
	return out
}

// Len returns the number of fonts.
func (s *Snapshot) Len() int { return len(s.ids) }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
