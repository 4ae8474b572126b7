package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Readable(t *testing.T) {
	k := NewDefaultKeyer()
	if got, want := k.Key("noto", "65,66"), "font:noto:65,66"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestDefaultKeyer_HashesLongKeys(t *testing.T) {
	k := NewDefaultKeyer()
	parts := make([]string, 400)
	for i := range parts {
		parts[i] = "19968"
	}
	long := strings.Join(parts, ",")

	got := k.Key("noto", long)
	if err := ValidateKey(got); err != nil {
		t.Fatalf("ValidateKey(%q) = %v", got, err)
	}
	if !strings.HasPrefix(got, "font:noto:sha256:") {
		t.Errorf("Key() = %q, want sha256 form", got)
	}
	if again := k.Key("noto", long); again != got {
		t.Errorf("Key() not deterministic: %q vs %q", got, again)
	}
	if other := k.Key("other", long); other == got {
		t.Error("different font ids must not share a key")
	}
}
