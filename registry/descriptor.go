package registry

import (
	"fmt"
	"regexp"
	"sort"

	"golang.org/x/text/language"
)

// DescriptorFile is the descriptor file name inside each font directory.
const DescriptorFile = "config.json"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// FileRef is one entry of the legacy "files" list.
type FileRef struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	FontFamily string `json:"font_family"`
}

// Descriptor is the static description of one font.
type Descriptor struct {
	ID       string        `json:"id"`
	Version  string        `json:"version"`
	Family   string        `json:"font_family"`
	License  string        `json:"license"`
	Fallback []string      `json:"fallback"`
	File     string        `json:"file,omitempty"`
	Files    []FileRef     `json:"files,omitempty"`
	Name     LocalizedText `json:"name,omitempty"`
	Title    LocalizedText `json:"title,omitempty"`
}

// FontFiles returns the font file paths relative to the descriptor
// directory, one per face. "file" names a single face; otherwise every
// entry of the legacy "files" list is a face, in list order.
func (d Descriptor) FontFiles() []string {
	if d.File != "" {
		return []string{d.File}
	}
	paths := make([]string, 0, len(d.Files))
	for _, ref := range d.Files {
		paths = append(paths, ref.Path)
	}
	return paths
}

// Validate checks the fields that must hold regardless of the rest of the
// registry. The id becomes a directory name in the artifact store, so it
// is restricted to a conservative character set.
func (d Descriptor) Validate() error {
	if !idPattern.MatchString(d.ID) {
		return fmt.Errorf("%w: id %q", ErrInvalidDescriptor, d.ID)
	}
	files := d.FontFiles()
	if len(files) == 0 {
		return fmt.Errorf("%w: %s: no font file", ErrInvalidDescriptor, d.ID)
	}
	for _, name := range files {
		if name == "" {
			return fmt.Errorf("%w: %s: empty font file path", ErrInvalidDescriptor, d.ID)
		}
	}
	for _, fb := range d.Fallback {
		if fb == "" {
			return fmt.Errorf("%w: %s: empty fallback id", ErrInvalidDescriptor, d.ID)
		}
	}
	if err := d.Name.validate(); err != nil {
		return fmt.Errorf("%w: %s: name: %v", ErrInvalidDescriptor, d.ID, err)
	}
	if err := d.Title.validate(); err != nil {
		return fmt.Errorf("%w: %s: title: %v", ErrInvalidDescriptor, d.ID, err)
	}
	return nil
}

// LocalizedText maps BCP 47 language tags to display strings.
type LocalizedText map[string]string

func (t LocalizedText) validate() error {
	for k := range t {
		if _, err := language.Parse(k); err != nil {
			return fmt.Errorf("language tag %q: %w", k, err)
		}
	}
	return nil
}

// Best returns the string whose tag best matches prefs. English, then the
// lexically first tag, is used when nothing matches. It returns "" for an
// empty text.
func (t LocalizedText) Best(prefs ...language.Tag) string {
	if len(t) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		// The matcher falls back to the first supported tag.
		if (keys[i] == "en") != (keys[j] == "en") {
			return keys[i] == "en"
		}
		return keys[i] < keys[j]
	})
	if len(prefs) == 0 {
		return t[keys[0]]
	}

	tags := make([]language.Tag, len(keys))
	for i, k := range keys {
		tags[i] = language.Make(k)
	}
	_, idx, _ := language.NewMatcher(tags).Match(prefs...)
	return t[keys[idx]]
}
