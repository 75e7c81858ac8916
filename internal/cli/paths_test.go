package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/declutter/pkg/cache"
	derrors "github.com/matzehuels/declutter/pkg/errors"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".cache", "declutter")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := filepath.Join(t.TempDir(), "xdg")
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestNewCacheLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c, err := newCache(false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer c.Close()

	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("newCache() = %T, want *cache.FileCache", c)
	}
	if want := filepath.Join(xdg, appName); fc.Dir() != want {
		t.Errorf("cache dir = %q, want %q", fc.Dir(), want)
	}

	off, err := newCache(true)
	if err != nil {
		t.Fatalf("newCache(noCache) error: %v", err)
	}
	if _, ok := off.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want *cache.NullCache", off)
	}
}

func TestDerivedPath(t *testing.T) {
	tests := []struct {
		input, suffix, ext string
		want               string
	}{
		{"labels.json", ".resolved", "", "labels.resolved.json"},
		{"dir/labels.geojson", ".resolved", "", "dir/labels.resolved.geojson"},
		{"labels.yaml", ".preview", ".svg", "labels.preview.svg"},
		{"map.toml", ".preview", ".png", "map.preview.png"},
		{"labels", ".resolved", "", "labels.resolved"},
	}

	for _, tt := range tests {
		if got := derivedPath(tt.input, tt.suffix, tt.ext); got != tt.want {
			t.Errorf("derivedPath(%q, %q, %q) = %q, want %q", tt.input, tt.suffix, tt.ext, got, tt.want)
		}
	}
}

func TestCheckOutputPaths(t *testing.T) {
	dir := t.TempDir()
	valid := []string{"", "-", filepath.Join(dir, "labels.resolved.json"), "../sibling.preview.svg"}
	if err := checkOutputPaths(valid...); err != nil {
		t.Errorf("checkOutputPaths(%q) error = %v", valid, err)
	}

	for _, bad := range []string{
		filepath.Join(dir, "bad\x00name.svg"),
		filepath.Join(dir, "tab\tname.json"),
		filepath.Join(dir, strings.Repeat("x", 600)+".svg"),
	} {
		if err := checkOutputPaths(bad); !derrors.Is(err, derrors.ErrCodeInvalidPath) {
			t.Errorf("checkOutputPaths(%q) error = %v, want %s", bad, err, derrors.ErrCodeInvalidPath)
		}
	}
}
