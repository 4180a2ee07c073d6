package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("OUTLOOK_TEST_DIR", "/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tilde alone", "~", home},
		{"tilde prefix", "~/outlook/db", filepath.Join(home, "outlook/db")},
		{"env var", "$OUTLOOK_TEST_DIR/cache.db", "/data/cache.db"},
		{"tilde in middle untouched", "/a/~/b", "/a/~/b"},
		{"absolute", "/var/lib/outlook.db", "/var/lib/outlook.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
