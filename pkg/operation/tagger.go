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
	"os"

	"github.com/sinedied/ntk-tagger/pkg/config"
	"github.com/sinedied/ntk-tagger/pkg/log"
	"github.com/sinedied/ntk-tagger/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains everything needed to build a Tagger
type Options struct {
	// InputPath is the file or directory to process
	InputPath string
	// OutputPath receives the result when InputPath is a single file; empty means in place
	OutputPath string
	// Rules is the merged rule set
	Rules *config.Config
	// Logger reports progress
	Logger *log.Logger
}

// 📊 Summary counts what a run did
type Summary struct {
	Files        int
	Modified     int
	Replacements int
}

// 🏷️ Tagger rewrites files according to a compiled rule set
type Tagger struct {
	input     string
	output    string
	isDir     bool
	recursive bool
	exclude   []string
	replacer  *text.Replacer
	logger    *log.Logger
	summary   Summary
}

// 🏭 New validates and compiles the rules. Any bad pattern is reported here,
// before a single file is read.
func New(ctx context.Context, opts Options) (*Tagger, error) {
	if opts.InputPath == "" {
		return nil, errors.Errorf("input path is required")
	}
	if opts.Logger == nil {
		return nil, errors.Errorf("logger is required")
	}

	rules := opts.Rules
	if rules == nil {
		rules = &config.Config{}
	}
	if err := rules.Validate(); err != nil {
		return nil, errors.Errorf("validating rules: %w", err)
	}

	compiled, err := compileRules(rules)
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}

	if compiled.IsEmpty() {
		opts.Logger.Zerolog().Debug().Msg("no rules given, files are rewritten unchanged")
	}

	t := &Tagger{
		input:     opts.InputPath,
		output:    opts.OutputPath,
		recursive: rules.Recursive,
		exclude:   rules.Exclude,
		replacer:  text.NewReplacer(compiled),
		logger:    opts.Logger,
	}

	// a missing input is not an error yet: it fails when it is read
	if info, err := os.Stat(opts.InputPath); err == nil && info.IsDir() {
		t.isDir = true
		if t.output != "" {
			t.logger.Warningf("Output file %s ignored, %s is a folder", t.output, opts.InputPath)
		}
		t.output = ""
	}

	return t, nil
}

// 🏃 Process rewrites the input file, or every selected file of the input directory.
// Files written before a failure stay written.
func (t *Tagger) Process(ctx context.Context) (*Summary, error) {
	t.logger.Header("Tagging in progress...")

	var err error
	if t.isDir {
		err = t.ProcessFolder(ctx, t.input, t.recursive)
	} else {
		_, err = t.ProcessFile(ctx, t.input)
	}

	t.logger.LogNewline()

	summary := t.summary
	if err != nil {
		return &summary, err
	}

	t.logger.Zerolog().Info().
		Int("files", summary.Files).
		Int("modified", summary.Modified).
		Int("replacements", summary.Replacements).
		Msg("tagging complete")
	t.logger.Success("Success!")

	return &summary, nil
}

// 📄 ProcessFile runs the rule set over one file and writes the result to the
// output path, or back to path when there is none.
func (t *Tagger) ProcessFile(ctx context.Context, path string) (*text.ReplacementResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	result, err := t.replacer.ReplaceText(ctx, f)
	f.Close()
	if err != nil {
		return nil, errors.Errorf("processing %s: %w", path, err)
	}

	out := t.output
	if out == "" {
		out = path
	}

	if err := os.WriteFile(out, result.ModifiedContent, 0o644); err != nil {
		return nil, errors.Errorf("writing %s: %w", out, err)
	}

	t.summary.Files++
	t.summary.Replacements += result.ReplacementCount
	if result.WasModified {
		t.summary.Modified++
	}

	t.logger.Progress(ctx, log.FileOperation{
		Path:         path,
		Output:       out,
		IsModified:   result.WasModified,
		Replacements: result.ReplacementCount,
	})

	return result, nil
}

// 🧩 compileRules turns configuration strings into patterns, keeping order
func compileRules(cfg *config.Config) (text.RuleSet, error) {
	var rs text.RuleSet

	for _, expr := range cfg.Remove {
		re, err := text.CompileRemove(expr)
		if err != nil {
			return rs, err
		}
		rs.Remove = append(rs.Remove, re)
	}

	for _, r := range cfg.Replace {
		rule, err := text.CompileReplace(r.Expr, r.With)
		if err != nil {
			return rs, err
		}
		rs.Replace = append(rs.Replace, rule)
	}

	for _, tag := range cfg.Tags {
		rule, err := text.CompileTag(tag.Name, tag.Value, cfg.QuoteTagNames)
		if err != nil {
			return rs, err
		}
		rs.Tags = append(rs.Tags, rule)
	}

	for _, tf := range cfg.TagFiles {
		rule, err := text.CompileFileTag(tf.Name, tf.Path, cfg.QuoteTagNames)
		if err != nil {
			return rs, err
		}
		rs.FileTags = append(rs.FileTags, rule)
	}

	return rs, nil
}
