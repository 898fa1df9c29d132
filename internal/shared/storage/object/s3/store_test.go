package s3

import (
	"io"
	"strings"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "abc/img.jpg", want: "abc/img.jpg"},
		{name: "staged prefix", prefix: "staged", key: "abc/img.jpg", want: "staged/abc/img.jpg"},
		{name: "prefix trailing slash", prefix: "staged/", key: "abc/img.jpg", want: "staged/abc/img.jpg"},
		{name: "prefix and key slashes", prefix: "/staged/", key: "/abc/img.jpg", want: "staged/abc/img.jpg"},
		{name: "nested prefix", prefix: "cv/staged", key: "abc/img.jpg", want: "cv/staged/abc/img.jpg"},
		{name: "empty key", prefix: "staged", key: "", want: "staged"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix("  /staged/ "); got != "staged" {
		t.Fatalf("normalizePrefix = %q", got)
	}
}

func TestCountingReader(t *testing.T) {
	c := &countingReader{r: strings.NewReader("abcdef")}
	if _, err := io.ReadAll(c); err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.n != 6 {
		t.Fatalf("expected 6 bytes counted, got %d", c.n)
	}
}
