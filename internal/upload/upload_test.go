package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidExtension(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		valid    bool
	}{
		{name: "jpg", filename: "photo.jpg", valid: true},
		{name: "jpeg", filename: "photo.jpeg", valid: true},
		{name: "png", filename: "logo.png", valid: true},
		{name: "webp", filename: "banner.webp", valid: true},
		{name: "uppercase", filename: "PHOTO.JPG", valid: true},
		{name: "pdf rejected", filename: "invoice.pdf", valid: false},
		{name: "executable rejected", filename: "payload.exe", valid: false},
		{name: "no extension", filename: "photo", valid: false},
		{name: "double extension uses last", filename: "photo.jpg.exe", valid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidExtension(tc.filename); got != tc.valid {
				t.Fatalf("%q: expected %v, got %v", tc.filename, tc.valid, got)
			}
		})
	}
}

func TestNewFilename(t *testing.T) {
	name := NewFilename("My Photo.JPG")

	if !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("expected lowercase .jpg suffix, got %q", name)
	}
	if strings.Contains(name, "My Photo") {
		t.Fatalf("expected original name to be replaced, got %q", name)
	}
	if filepath.Base(name) != name {
		t.Fatalf("expected a bare filename, got %q", name)
	}

	if NewFilename("a.png") == NewFilename("a.png") {
		t.Fatal("expected generated filenames to differ")
	}
}

func TestInitCreatesKindDirectories(t *testing.T) {
	dir := t.TempDir()

	if err := Init(dir); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, kind := range []string{KindMarkets, KindProducts, KindProfiles} {
		sub := filepath.Join(dir, kind)
		info, err := os.Stat(sub)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", sub, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", sub)
		}
	}
}
