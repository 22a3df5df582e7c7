// Copyright 2025 Yohan Lasorsa
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 📁 ProcessFolder processes the files of a directory. Without recursion only
// its direct entries are visited and sub-directories are skipped.
func (t *Tagger) ProcessFolder(ctx context.Context, path string, recursive bool) error {
	if !recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return errors.Errorf("reading directory %s: %w", path, err)
		}
		for _, entry := range entries {
			p := filepath.Join(path, entry.Name())
			if isDirectory(p, entry) || t.shouldIgnore(path, p) {
				continue
			}
			if _, err := t.ProcessFile(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}

	// a linked root is followed, links below it are not
	root, err := filepath.EvalSymlinks(path)
	if err != nil {
		return errors.Errorf("resolving %s: %w", path, err)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", p, err)
		}
		if p == root {
			return nil
		}
		if t.shouldIgnore(root, p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		// linked directories are neither processed nor entered
		if isDirectory(p, d) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.Errorf("resolving %s: %w", p, err)
		}
		_, err = t.ProcessFile(ctx, filepath.Join(path, rel))
		return err
	})
}

// 🔍 shouldIgnore checks p, relative to root, against the exclusion globs
func (t *Tagger) shouldIgnore(root, p string) bool {
	if len(t.exclude) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range t.exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			t.logger.Zerolog().Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			t.logger.Zerolog().Debug().Str("file", rel).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}

	return false
}

func isDirectory(p string, d fs.DirEntry) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
