// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package discover walks a project tree collecting source files to
// format, honoring exclude globs from the project configuration.
// Grounded on the teacher's turns.CollectInputs, generalized from
// "does this filename match the turn-report pattern" to "does this path
// match an include extension and not match an exclude glob".
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// sourceExtensions lists the file suffixes considered formattable
// sources. ".hrl" header files are included because macros and records
// they define affect how sibling ".erl" files must be read, even though
// efmt formats each file independently.
var sourceExtensions = []string{".erl", ".hrl"}

// SourceFile is one discovered file queued for formatting.
type SourceFile struct {
	Path string // as walked, including the root passed to Walk
}

// Walk collects every source file under root, in deterministic
// lexicographic order, skipping any path matching an exclude glob.
func Walk(fs afero.Fs, root string, excludes []string) ([]SourceFile, error) {
	var out []SourceFile
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !hasSourceExtension(path) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		excluded, matchErr := matchesAny(excludes, rel)
		if matchErr != nil {
			return matchErr
		}
		if excluded {
			return nil
		}
		out = append(out, SourceFile{Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walk %s: %w", root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func hasSourceExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range sourceExtensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func matchesAny(globs []string, path string) (bool, error) {
	slashed := filepath.ToSlash(path)
	for _, g := range globs {
		ok, err := doublestar.PathMatch(g, slashed)
		if err != nil {
			return false, fmt.Errorf("discover: bad exclude pattern %q: %w", g, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
