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

package text

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ReplacementResult contains the results of running a rule set over some content
type ReplacementResult struct {
	// WasModified indicates the output differs from the input
	WasModified bool

	// ReplacementCount is the number of matches substituted across all passes
	ReplacementCount int

	// OriginalContent is the content before any pass
	OriginalContent []byte

	// ModifiedContent is the content after the last pass
	ModifiedContent []byte
}

// SourceReader loads the contents substituted for a file-sourced tag
type SourceReader func(path string) ([]byte, error)

// Replacer applies a RuleSet to content
type Replacer struct {
	rules      RuleSet
	readSource SourceReader
}

// NewReplacer creates a Replacer reading tag sources from disk
func NewReplacer(rules RuleSet) *Replacer {
	return &Replacer{
		rules:      rules,
		readSource: os.ReadFile,
	}
}

// WithSourceReader swaps the function used to load file-sourced tags
func (r *Replacer) WithSourceReader(fn SourceReader) *Replacer {
	r.readSource = fn
	return r
}

// ReplaceText reads all of content and applies the rule set to it
func (r *Replacer) ReplaceText(ctx context.Context, content io.Reader) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}
	return r.Apply(ctx, originalContent)
}

// Apply runs removals, replacements, literal tags then file tags over content.
// Each rule makes a single left-to-right pass and its output feeds the next rule.
func (r *Replacer) Apply(ctx context.Context, content []byte) (*ReplacementResult, error) {
	logger := zerolog.Ctx(ctx)

	result := &ReplacementResult{
		OriginalContent: content,
	}

	current := content

	for _, re := range r.rules.Remove {
		n := len(re.FindAllIndex(current, -1))
		if n > 0 {
			current = re.ReplaceAllLiteral(current, nil)
			result.ReplacementCount += n
		}
		logger.Trace().Str("pattern", re.String()).Int("matches", n).Msg("remove pass")
	}

	for _, rule := range r.rules.Replace {
		n := len(rule.Pattern.FindAllIndex(current, -1))
		if n > 0 {
			current = rule.Pattern.ReplaceAll(current, []byte(rule.Template))
			result.ReplacementCount += n
		}
		logger.Trace().Str("pattern", rule.Pattern.String()).Int("matches", n).Msg("replace pass")
	}

	for _, tag := range r.rules.Tags {
		n := len(tag.Pattern.FindAllIndex(current, -1))
		if n > 0 {
			current = tag.Pattern.ReplaceAllLiteral(current, []byte(tag.Value))
			result.ReplacementCount += n
		}
		logger.Trace().Str("tag", tag.Name).Int("matches", n).Msg("tag pass")
	}

	for _, tag := range r.rules.FileTags {
		// sources are read even when the tag is absent so a missing file always fails
		source, err := r.readSource(tag.Path)
		if err != nil {
			return nil, errors.Errorf("reading source for tag %q: %w", tag.Name, err)
		}
		n := len(tag.Pattern.FindAllIndex(current, -1))
		if n > 0 {
			current = tag.Pattern.ReplaceAllLiteral(current, source)
			result.ReplacementCount += n
		}
		logger.Trace().Str("tag", tag.Name).Str("source", tag.Path).Int("matches", n).Msg("file tag pass")
	}

	result.ModifiedContent = current
	result.WasModified = !bytes.Equal(content, current)
	return result, nil
}
