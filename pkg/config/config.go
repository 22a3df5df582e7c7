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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for rules file parsers
type Parser interface {
	// 📝 Parse parses the rules from bytes
	Parse(ctx context.Context, data []byte, filename string) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Replacement is a pattern and the string its matches become
type Replacement struct {
	Expr string `json:"expr" yaml:"expr"`
	With string `json:"with" yaml:"with"`
}

// 🏷️ Tag is a tag name and its literal value
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// 📄 TagFile is a tag name and the file whose contents replace it
type TagFile struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// 📚 Config is the complete set of rules for one run
type Config struct {
	Remove        []string      `json:"remove,omitempty" yaml:"remove,omitempty"`
	Replace       []Replacement `json:"replace,omitempty" yaml:"replace,omitempty"`
	Tags          []Tag         `json:"tags,omitempty" yaml:"tags,omitempty"`
	TagFiles      []TagFile     `json:"tag_files,omitempty" yaml:"tag_files,omitempty"`
	Exclude       []string      `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Recursive     bool          `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	QuoteTagNames bool          `json:"quote_tag_names,omitempty" yaml:"quote_tag_names,omitempty"`

	location string
}

// 🎯 Load loads a rules file, picking the parser from the file extension
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading rules file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading rules file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data, path)
	if err != nil {
		return nil, errors.Errorf("parsing rules file: %w", err)
	}
	cfg.location = path

	// tag sources are relative to the rules file, not the working directory
	base := filepath.Dir(path)
	for i, tf := range cfg.TagFiles {
		if tf.Path != "" && !filepath.IsAbs(tf.Path) {
			cfg.TagFiles[i].Path = filepath.Join(base, tf.Path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating rules file: %w", err)
	}

	logger.Debug().
		Int("remove", len(cfg.Remove)).
		Int("replace", len(cfg.Replace)).
		Int("tags", len(cfg.Tags)).
		Int("tag_files", len(cfg.TagFiles)).
		Msg("rules file loaded")

	return cfg, nil
}

// 🔍 Validate checks the parts of the configuration the regex engine does not
func (cfg *Config) Validate() error {
	for i, tf := range cfg.TagFiles {
		if tf.Path == "" {
			return errors.Errorf("tag_files[%d] (%s): path is required", i, tf.Name)
		}
	}
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("exclude: invalid glob %q", pattern)
		}
	}
	return nil
}

// 🔀 Merge appends the lists of other after those of cfg and ORs the switches
func (cfg *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	cfg.Remove = append(cfg.Remove, other.Remove...)
	cfg.Replace = append(cfg.Replace, other.Replace...)
	cfg.Tags = append(cfg.Tags, other.Tags...)
	cfg.TagFiles = append(cfg.TagFiles, other.TagFiles...)
	cfg.Exclude = append(cfg.Exclude, other.Exclude...)
	cfg.Recursive = cfg.Recursive || other.Recursive
	cfg.QuoteTagNames = cfg.QuoteTagNames || other.QuoteTagNames
}

// 📍 Location returns the file the configuration was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a short summary of the configuration
func (cfg *Config) String() string {
	return fmt.Sprintf("remove=%d replace=%d tags=%d tag_files=%d exclude=%d recursive=%t",
		len(cfg.Remove), len(cfg.Replace), len(cfg.Tags), len(cfg.TagFiles), len(cfg.Exclude), cfg.Recursive)
}
