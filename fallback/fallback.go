package fallback

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/registry"
)

// ErrNoResolvableGlyphs is returned when no font in the chain covers any
// requested code point.
var ErrNoResolvableGlyphs = errors.New("fallback: no resolvable glyphs")

// Plan maps each resolved code point to its source face.
type Plan struct {
	// Primary is the requested font id.
	Primary string

	// Sources maps code point to the face that serves it.
	Sources map[rune]Source

	// Unresolved lists code points no font covers, ascending.
	Unresolved []rune

	// Chain is the resolution order that produced the plan.
	Chain []string
}

// Source addresses one face of a registry font.
type Source struct {
	FontID string
	Face   int
}

// Partition groups the resolved code points by source, in chain order and
// then face order. Each group's runes are ascending.
func (p Plan) Partition() []Partition {
	bySource := make(map[Source][]rune, len(p.Chain))
	for r, src := range p.Sources {
		bySource[src] = append(bySource[src], r)
	}
	rank := make(map[string]int, len(p.Chain))
	for i, id := range p.Chain {
		rank[id] = i
	}

	out := make([]Partition, 0, len(bySource))
	for src, runes := range bySource {
		slices.Sort(runes)
		out = append(out, Partition{FontID: src.FontID, Face: src.Face, Runes: runes})
	}
	slices.SortFunc(out, func(a, b Partition) int {
		if c := cmp.Compare(rank[a.FontID], rank[b.FontID]); c != 0 {
			return c
		}
		return cmp.Compare(a.Face, b.Face)
	})
	return out
}

// Partition is the slice of a request served by one face.
type Partition struct {
	FontID string
	Face   int
	Runes  []rune
}

// Coverage looks fonts up by id. *registry.Snapshot implements it.
type Coverage interface {
	Lookup(id string) (*registry.Font, error)
}

// Resolver computes fallback plans.
type Resolver struct{}

// NewResolver returns a Resolver.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve builds the plan for set requested against fontID.
func (r *Resolver) Resolve(cov Coverage, fontID string, set codepoint.Set) (Plan, error) {
	if _, err := cov.Lookup(fontID); err != nil {
		return Plan{}, err
	}
	chain, err := Chain(cov, fontID)
	if err != nil {
		return Plan{}, err
	}

	fonts := make([]*registry.Font, len(chain))
	for i, id := range chain {
		if fonts[i], err = cov.Lookup(id); err != nil {
			return Plan{}, err
		}
	}

	plan := Plan{Primary: fontID, Sources: make(map[rune]Source, set.Len()), Chain: chain}
	for _, cp := range set.Runes() {
		resolved := false
		for _, f := range fonts {
			if fc, ok := f.FaceFor(cp); ok {
				plan.Sources[cp] = Source{FontID: f.ID(), Face: fc.Index()}
				resolved = true
				break
			}
		}
		if !resolved {
			plan.Unresolved = append(plan.Unresolved, cp)
		}
	}
	if len(plan.Sources) == 0 {
		return plan, fmt.Errorf("%w: font %s, %d code points", ErrNoResolvableGlyphs, fontID, set.Len())
	}
	return plan, nil
}

// Chain returns fontID followed by its transitive fallbacks in depth-first
// declaration order, each font once. It walks with an explicit stack and a
// visited set, so a cyclic graph terminates.
func Chain(cov Coverage, fontID string) ([]string, error) {
	var chain []string
	visited := make(map[string]bool)
	stack := []string{fontID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		f, err := cov.Lookup(id)
		if err != nil {
			return nil, err
		}
		visited[id] = true
		chain = append(chain, id)

		fb := f.Descriptor().Fallback
		for i := len(fb) - 1; i >= 0; i-- {
			if !visited[fb[i]] {
				stack = append(stack, fb[i])
			}
		}
	}
	return chain, nil
}
