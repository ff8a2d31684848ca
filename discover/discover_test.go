// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package discover_test

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/verbit/efmt/discover"
)

func writeFile(t *testing.T, fs afero.Fs, path, contents string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func TestWalk_CollectsSourceExtensionsOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/a.erl", "-module(a).")
	writeFile(t, fs, "/proj/b.hrl", "-define(X, 1).")
	writeFile(t, fs, "/proj/README.md", "not erlang")
	writeFile(t, fs, "/proj/c.ERL", "-module(c).")

	files, err := discover.Walk(fs, "/proj", nil)
	if err != nil {
		t.Fatalf("Walk error = %v", err)
	}
	if got, want := len(files), 3; got != want {
		t.Fatalf("len(files) = %d, want %d: %+v", got, want, files)
	}
}

func TestWalk_IsSortedLexicographically(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/z.erl", "")
	writeFile(t, fs, "/proj/a.erl", "")
	writeFile(t, fs, "/proj/m.erl", "")

	files, err := discover.Walk(fs, "/proj", nil)
	if err != nil {
		t.Fatalf("Walk error = %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	want := []string{"/proj/a.erl", "/proj/m.erl", "/proj/z.erl"}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
}

func TestWalk_HonorsExcludeGlobs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/src/keep.erl", "")
	writeFile(t, fs, "/proj/vendor/skip.erl", "")
	writeFile(t, fs, "/proj/_build/also_skip.erl", "")

	files, err := discover.Walk(fs, "/proj", []string{"vendor/**", "_build/**"})
	if err != nil {
		t.Fatalf("Walk error = %v", err)
	}
	if got, want := len(files), 1; got != want {
		t.Fatalf("len(files) = %d, want %d: %+v", got, want, files)
	}
	if got, want := files[0].Path, "/proj/src/keep.erl"; got != want {
		t.Fatalf("files[0].Path = %q, want %q", got, want)
	}
}

func TestWalk_EmptyTreeReturnsNoFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/proj", 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	files, err := discover.Walk(fs, "/proj", nil)
	if err != nil {
		t.Fatalf("Walk error = %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %+v, want empty", files)
	}
}

func TestWalk_BadExcludePatternIsAnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/a.erl", "")

	_, err := discover.Walk(fs, "/proj", []string{"["})
	if err == nil {
		t.Fatalf("Walk with a malformed glob error = nil, want an error")
	}
}
