package codepoint

import (
	"errors"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []rune
		wantErr bool
	}{
		{name: "single", raw: "65", want: []rune{65}},
		{name: "sorted and deduplicated", raw: "67,65,66,65", want: []rune{65, 66, 67}},
		{name: "whitespace trimmed", raw: " 65 , 66", want: []rune{65, 66}},
		{name: "zero allowed", raw: "0", want: []rune{0}},
		{name: "max scalar", raw: "1114111", want: []rune{0x10FFFF}},
		{name: "empty", raw: "", wantErr: true},
		{name: "blank", raw: "   ", wantErr: true},
		{name: "empty token", raw: "65,,66", wantErr: true},
		{name: "negative", raw: "-1", wantErr: true},
		{name: "signed", raw: "+65", wantErr: true},
		{name: "hex", raw: "0x41", wantErr: true},
		{name: "letters", raw: "abc", wantErr: true},
		{name: "above range", raw: "1114112", wantErr: true},
		{name: "overflow", raw: "99999999999", wantErr: true},
		{name: "surrogate low", raw: "55296", wantErr: true},
		{name: "surrogate high", raw: "57343", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCodepoint) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidCodepoint", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.raw, err)
			}
			if !slices.Equal(got.Runes(), tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.raw, got.Runes(), tt.want)
			}
		})
	}
}

func TestNormalize_OrderInsensitive(t *testing.T) {
	a, err := Normalize([]string{"66", "65", "66"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	b, err := Normalize([]string{"65", "66"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("Normalize() sets differ: %v vs %v", a, b)
	}
	if a.Key() != b.Key() {
		t.Errorf("Key() = %q and %q, want equal", a.Key(), b.Key())
	}
}

func TestNormalize_Empty(t *testing.T) {
	if _, err := Normalize(nil); !errors.Is(err, ErrInvalidCodepoint) {
		t.Errorf("Normalize(nil) error = %v, want ErrInvalidCodepoint", err)
	}
}

func TestFromRunes(t *testing.T) {
	s, err := FromRunes([]rune{'b', 'a', 'b'})
	if err != nil {
		t.Fatalf("FromRunes() error = %v", err)
	}
	if got := s.Key(); got != "97,98" {
		t.Errorf("Key() = %q, want %q", got, "97,98")
	}
	if _, err := FromRunes([]rune{0xD800}); !errors.Is(err, ErrInvalidCodepoint) {
		t.Errorf("FromRunes(surrogate) error = %v, want ErrInvalidCodepoint", err)
	}
	if _, err := FromRunes(nil); !errors.Is(err, ErrInvalidCodepoint) {
		t.Errorf("FromRunes(nil) error = %v, want ErrInvalidCodepoint", err)
	}
}

func TestFromRunes_DoesNotAliasInput(t *testing.T) {
	in := []rune{'c', 'a'}
	s := MustFromRunes(in...)
	in[0] = 'z'
	if s.Contains('z') {
		t.Error("Set changed after caller mutated input")
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		set       Set
		key       Key
		composite bool
		path      string
	}{
		{set: MustFromRunes('A'), key: "65", path: "65.woff2"},
		{set: MustFromRunes('C', 'A', 'B'), key: "65,66,67", composite: true, path: "cache/65,66,67.woff2"},
		{set: MustFromRunes(0x1F600), key: "128512", path: "128512.woff2"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			k := tt.set.Key()
			if k != tt.key {
				t.Errorf("Key() = %q, want %q", k, tt.key)
			}
			if k.IsComposite() != tt.composite {
				t.Errorf("IsComposite() = %v, want %v", k.IsComposite(), tt.composite)
			}
			if k.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", k.Path(), tt.path)
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	k, s, err := ParseKey("65,66")
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if k != "65,66" || s.Len() != 2 {
		t.Errorf("ParseKey() = %q, %v", k, s)
	}

	for _, raw := range []string{"66,65", "65,65", " 65", "065", "x"} {
		if _, _, err := ParseKey(raw); !errors.Is(err, ErrInvalidCodepoint) {
			t.Errorf("ParseKey(%q) error = %v, want ErrInvalidCodepoint", raw, err)
		}
	}
}

func TestSet_Contains(t *testing.T) {
	s := MustFromRunes('a', 'c', 'e')
	for _, r := range []rune{'a', 'c', 'e'} {
		if !s.Contains(r) {
			t.Errorf("Contains(%q) = false, want true", r)
		}
	}
	if s.Contains('b') {
		t.Error("Contains('b') = true, want false")
	}
}
