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

package operation_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/sinedied/ntk-tagger/pkg/config"
	"github.com/sinedied/ntk-tagger/pkg/log"
	"github.com/sinedied/ntk-tagger/pkg/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 writeTree creates files (relative path -> content) under dir
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// 🧪 newTagger builds a Tagger whose console output lands in the returned buffer
func newTagger(t *testing.T, input, output string, rules *config.Config) (*operation.Tagger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := log.New(buf, io.Discard, zerolog.Disabled)
	tagger, err := operation.New(context.Background(), operation.Options{
		InputPath:  input,
		OutputPath: output,
		Rules:      rules,
		Logger:     logger,
	})
	require.NoError(t, err)
	return tagger, buf
}

func TestProcessFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		rules   *config.Config
		sources map[string]string
		want    string
	}{
		{
			name:    "empty_rules_are_identity",
			content: "line one\r\nline two\x00\n\n",
			rules:   &config.Config{},
			want:    "line one\r\nline two\x00\n\n",
		},
		{
			name:    "remove_multiline_block",
			content: "start\n/*DEBUG*/\nconsole.log(x);\n/*END*/\nend\n",
			rules:   &config.Config{Remove: []string{`/\*DEBUG\*/.*?/\*END\*/\n`}},
			want:    "start\nend\n",
		},
		{
			name:    "replace_with_backreference",
			content: "name=foo;name=bar",
			rules:   &config.Config{Replace: []config.Replacement{{Expr: `name=(\w+)`, With: `\1=name`}}},
			want:    "foo=name;bar=name",
		},
		{
			name:    "literal_tag",
			content: "v=@@VERSION@@",
			rules:   &config.Config{Tags: []config.Tag{{Name: "VERSION", Value: "1.2.3"}}},
			want:    "v=1.2.3",
		},
		{
			name:    "file_tag",
			content: "@@LICENSE@@",
			sources: map[string]string{"license.txt": "LICENSE TEXT"},
			rules:   &config.Config{TagFiles: []config.TagFile{{Name: "LICENSE", Path: "license.txt"}}},
			want:    "LICENSE TEXT",
		},
		{
			name:    "removal_does_not_rerun_after_tags",
			content: "foo @@X@@",
			rules: &config.Config{
				Remove: []string{"foo"},
				Tags:   []config.Tag{{Name: "X", Value: "foo"}},
			},
			want: " foo",
		},
		{
			name:    "all_passes_in_order",
			content: "<<drop>>a @@T@@ @@F@@",
			sources: map[string]string{"f.txt": "from file"},
			rules: &config.Config{
				Remove:   []string{`<<.*?>>`},
				Replace:  []config.Replacement{{Expr: "a", With: "@@T@@"}},
				Tags:     []config.Tag{{Name: "T", Value: "tag"}},
				TagFiles: []config.TagFile{{Name: "F", Path: "f.txt"}},
			},
			want: "tag tag from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.sources {
				writeTree(t, dir, map[string]string{name: content})
			}
			for i := range tt.rules.TagFiles {
				tt.rules.TagFiles[i].Path = filepath.Join(dir, tt.rules.TagFiles[i].Path)
			}

			input := filepath.Join(dir, "input.txt")
			writeTree(t, dir, map[string]string{"input.txt": tt.content})

			tagger, _ := newTagger(t, input, "", tt.rules)
			_, err := tagger.ProcessFile(context.Background(), input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, readFile(t, input))
		})
	}
}

func TestProcessFolder(t *testing.T) {
	tests := []struct {
		name      string
		recursive bool
		exclude   []string
		want      map[string]string
	}{
		{
			name:      "non_recursive_only_direct_children",
			recursive: false,
			want: map[string]string{
				"a.txt":       "done",
				"sub/b.txt":   "@@T@@",
				"sub/c/d.txt": "@@T@@",
			},
		},
		{
			name:      "recursive_all_depths",
			recursive: true,
			want: map[string]string{
				"a.txt":       "done",
				"sub/b.txt":   "done",
				"sub/c/d.txt": "done",
			},
		},
		{
			name:      "recursive_with_excluded_directory",
			recursive: true,
			exclude:   []string{"sub/c"},
			want: map[string]string{
				"a.txt":       "done",
				"sub/b.txt":   "done",
				"sub/c/d.txt": "@@T@@",
			},
		},
		{
			name:      "recursive_with_excluded_glob",
			recursive: true,
			exclude:   []string{"**/b.txt"},
			want: map[string]string{
				"a.txt":       "done",
				"sub/b.txt":   "@@T@@",
				"sub/c/d.txt": "done",
			},
		},
		{
			name:      "non_recursive_with_excluded_file",
			recursive: false,
			exclude:   []string{"*.txt"},
			want: map[string]string{
				"a.txt":       "@@T@@",
				"sub/b.txt":   "@@T@@",
				"sub/c/d.txt": "@@T@@",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTree(t, dir, map[string]string{
				"a.txt":       "@@T@@",
				"sub/b.txt":   "@@T@@",
				"sub/c/d.txt": "@@T@@",
			})

			rules := &config.Config{
				Tags:      []config.Tag{{Name: "T", Value: "done"}},
				Recursive: tt.recursive,
				Exclude:   tt.exclude,
			}
			tagger, _ := newTagger(t, dir, "", rules)

			_, err := tagger.Process(context.Background())
			require.NoError(t, err)

			for name, want := range tt.want {
				assert.Equal(t, want, readFile(t, filepath.Join(dir, filepath.FromSlash(name))), "file %s", name)
			}
		})
	}
}

func TestProcessOutputPath(t *testing.T) {
	t.Run("single_file_is_redirected", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"in.txt": "v=@@V@@"})
		in := filepath.Join(dir, "in.txt")
		out := filepath.Join(dir, "out.txt")

		tagger, _ := newTagger(t, in, out, &config.Config{Tags: []config.Tag{{Name: "V", Value: "1"}}})
		summary, err := tagger.Process(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "v=@@V@@", readFile(t, in), "input must be left untouched")
		assert.Equal(t, "v=1", readFile(t, out))
		assert.Equal(t, operation.Summary{Files: 1, Modified: 1, Replacements: 1}, *summary)
	})

	t.Run("directory_ignores_output", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"a.txt": "@@V@@", "b.txt": "@@V@@"})
		out := filepath.Join(t.TempDir(), "out.txt")

		color.NoColor = true
		defer func() { color.NoColor = false }()

		tagger, buf := newTagger(t, dir, out, &config.Config{Tags: []config.Tag{{Name: "V", Value: "1"}}})
		assert.Equal(t, "⚠️  Output file "+out+" ignored, "+dir+" is a folder\n", buf.String())

		_, err := tagger.Process(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "1", readFile(t, filepath.Join(dir, "a.txt")))
		assert.Equal(t, "1", readFile(t, filepath.Join(dir, "b.txt")))
		assert.NoFileExists(t, out)
	})
}

func TestProcessConsoleOutput(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "x", "b.txt": "y", "c.txt": "z"})

	tagger, buf := newTagger(t, dir, "", &config.Config{})
	summary, err := tagger.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Tagging in progress...\n...\n✅ Success!\n", buf.String())
	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, 0, summary.Modified)
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "untouched"})
	logger := log.New(io.Discard, io.Discard, zerolog.Disabled)

	tests := []struct {
		name        string
		opts        operation.Options
		errContains string
	}{
		{
			name:        "missing_input",
			opts:        operation.Options{Logger: logger},
			errContains: "input path is required",
		},
		{
			name:        "missing_logger",
			opts:        operation.Options{InputPath: dir},
			errContains: "logger is required",
		},
		{
			name: "invalid_remove_pattern",
			opts: operation.Options{
				InputPath: dir,
				Logger:    logger,
				Rules:     &config.Config{Remove: []string{"(unclosed"}},
			},
			errContains: "compiling remove expression",
		},
		{
			name: "invalid_replace_pattern",
			opts: operation.Options{
				InputPath: dir,
				Logger:    logger,
				Rules:     &config.Config{Replace: []config.Replacement{{Expr: "[", With: ""}}},
			},
			errContains: "compiling replace expression",
		},
		{
			name: "invalid_tag_pattern",
			opts: operation.Options{
				InputPath: dir,
				Logger:    logger,
				Rules:     &config.Config{Tags: []config.Tag{{Name: "(", Value: ""}}},
			},
			errContains: "compiling tag",
		},
		{
			name: "invalid_exclude",
			opts: operation.Options{
				InputPath: dir,
				Logger:    logger,
				Rules:     &config.Config{Exclude: []string{"["}},
			},
			errContains: "invalid glob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := operation.New(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Equal(t, "untouched", readFile(t, filepath.Join(dir, "a.txt")))
		})
	}
}

func TestProcessErrors(t *testing.T) {
	t.Run("missing_input_file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.txt")
		tagger, _ := newTagger(t, missing, "", &config.Config{})

		_, err := tagger.Process(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading")
	})

	t.Run("missing_tag_source", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"a.txt": "no tags"})
		tagger, buf := newTagger(t, dir, "", &config.Config{
			TagFiles: []config.TagFile{{Name: "L", Path: filepath.Join(dir, "missing", "LICENSE")}},
		})

		_, err := tagger.Process(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `reading source for tag "L"`)
		assert.NotContains(t, buf.String(), "Success!")
	})

	t.Run("earlier_files_stay_written", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"a.txt": "@@V@@"})
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone.txt"), filepath.Join(dir, "b.txt")))

		tagger, _ := newTagger(t, dir, "", &config.Config{Tags: []config.Tag{{Name: "V", Value: "1"}}})
		summary, err := tagger.Process(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "b.txt")

		assert.Equal(t, "1", readFile(t, filepath.Join(dir, "a.txt")), "no rollback")
		assert.Equal(t, 1, summary.Files)
	})
}

func TestLinkedDirectoriesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "@@V@@"})
	writeTree(t, other, map[string]string{"b.txt": "@@V@@"})
	require.NoError(t, os.Symlink(other, filepath.Join(dir, "link")))

	for _, recursive := range []bool{false, true} {
		tagger, _ := newTagger(t, dir, "", &config.Config{
			Tags:      []config.Tag{{Name: "V", Value: "1"}},
			Recursive: recursive,
		})
		_, err := tagger.Process(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, "1", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "@@V@@", readFile(t, filepath.Join(other, "b.txt")))
}

func TestLinkedRootIsFollowed(t *testing.T) {
	target := t.TempDir()
	writeTree(t, target, map[string]string{
		"a.txt":     "@@V@@",
		"sub/b.txt": "@@V@@",
	})
	root := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.Symlink(target, root))

	tests := []struct {
		name      string
		recursive bool
		wantFiles int
		wantB     string
	}{
		{name: "non_recursive", recursive: false, wantFiles: 1, wantB: "@@V@@"},
		{name: "recursive", recursive: true, wantFiles: 2, wantB: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeTree(t, target, map[string]string{
				"a.txt":     "@@V@@",
				"sub/b.txt": "@@V@@",
			})

			tagger, _ := newTagger(t, root, "", &config.Config{
				Tags:      []config.Tag{{Name: "V", Value: "1"}},
				Recursive: tt.recursive,
				Exclude:   []string{"sub/ignored/**"},
			})
			summary, err := tagger.Process(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantFiles, summary.Files)
			assert.Equal(t, "1", readFile(t, filepath.Join(target, "a.txt")))
			assert.Equal(t, tt.wantB, readFile(t, filepath.Join(target, "sub", "b.txt")))
		})
	}
}
