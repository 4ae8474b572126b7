package store

import (
	"context"
	"strings"

	"github.com/jonwraymond/fontops/codepoint"
)

// ReadPath reads the artifact addressed by a static path relative to the
// store root, such as "noto/65.woff2" or "noto/cache/65,66.woff2".
func (s *FileStore) ReadPath(ctx context.Context, rel string) (Artifact, error) {
	fontID, rest, ok := strings.Cut(rel, "/")
	if !ok {
		return Artifact{}, ErrNotFound
	}
	composite := strings.HasPrefix(rest, "cache/")
	raw, found := strings.CutSuffix(strings.TrimPrefix(rest, "cache/"), ".woff2")
	if !found {
		return Artifact{}, ErrNotFound
	}
	key, _, err := codepoint.ParseKey(raw)
	if err != nil || key.IsComposite() != composite {
		return Artifact{}, ErrNotFound
	}
	return s.Read(ctx, fontID, key)
}
