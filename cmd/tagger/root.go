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

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/sinedied/ntk-tagger/pkg/config"
	"github.com/sinedied/ntk-tagger/pkg/log"
	"github.com/sinedied/ntk-tagger/pkg/operation"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// rootFlags holds every command line flag
type rootFlags struct {
	configFile    string
	outputFile    string
	remove        []string
	replace       []string
	tags          []string
	tagFiles      []string
	exclude       []string
	recursive     bool
	quoteTagNames bool
	debug         bool
	verbose       bool
}

// app wires the command to its output streams
type app struct {
	flags  rootFlags
	stdout io.Writer
	stderr io.Writer
}

// command builds the root command
func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagger [flags] input_file",
		Short: "Search & replace text tags in source files",
		Long: `tagger rewrites a file, or every file of a folder, in place.

For each file it applies, in order:
1. every --remove_expr pattern (matches are deleted)
2. every --replace_expr pattern (matches are replaced, \1 or \g<name> refer to groups)
3. every --replace_tag (@@TAG@@ becomes the given string)
4. every --replace_tag_file (@@TAG@@ becomes the content of the given file)

Patterns use Go regular expression syntax and "." also matches newlines.`,
		Example: `  tagger -t VERSION 1.2.3 -f LICENSE LICENSE.txt -R src
  tagger -r '<!--DEBUG-->.*?<!--/DEBUG-->' -o dist/index.html index.html
  tagger -c .tagger.yaml -R .`,
		Args:          cobra.ExactArgs(1),
		Version:       GetVersionInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args[0])
		},
	}

	cmd.SetVersionTemplate(FormatVersion())
	a.addFlags(cmd)

	return cmd
}

// addFlags registers the tagger flags
func (a *app) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&a.flags.remove, "remove_expr", "r", nil, "a regex for content to remove in the file (repeatable)")
	f.StringArrayVarP(&a.flags.replace, "replace_expr", "e", nil, "EXPR STRING: a regex for content to replace by the following string (repeatable)")
	f.StringArrayVarP(&a.flags.tags, "replace_tag", "t", nil, "TAG STRING: a tag to replace by the following string (repeatable)")
	f.StringArrayVarP(&a.flags.tagFiles, "replace_tag_file", "f", nil, "TAG PATH: a tag to replace by the content at the following path (repeatable)")
	f.StringVarP(&a.flags.outputFile, "output_file", "o", "", "write the result to this file instead of in place, has no effect if the target is a folder")
	f.BoolVarP(&a.flags.recursive, "recursive", "R", false, "if the target is a folder, recurse through all subfolders")
	f.StringVarP(&a.flags.configFile, "config", "c", "", "rules file (.yaml, .yml, .hcl or .json), applied before command line rules")
	f.StringArrayVarP(&a.flags.exclude, "exclude", "x", nil, "glob of paths, relative to the target folder, to leave untouched (repeatable)")
	f.BoolVar(&a.flags.quoteTagNames, "quote_tag_names", false, "match tag names literally instead of as regex fragments")
	f.BoolVarP(&a.flags.debug, "debug", "d", false, "enable debug logging")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "print one line per file instead of a dot")
}

// rules converts the command line flags into a rule set
func (f *rootFlags) rules() (*config.Config, error) {
	cfg := &config.Config{
		Remove:        f.remove,
		Exclude:       f.exclude,
		Recursive:     f.recursive,
		QuoteTagNames: f.quoteTagNames,
	}

	replace, err := pairs("replace_expr", f.replace)
	if err != nil {
		return nil, err
	}
	for _, p := range replace {
		cfg.Replace = append(cfg.Replace, config.Replacement{Expr: p[0], With: p[1]})
	}

	tags, err := pairs("replace_tag", f.tags)
	if err != nil {
		return nil, err
	}
	for _, p := range tags {
		cfg.Tags = append(cfg.Tags, config.Tag{Name: p[0], Value: p[1]})
	}

	tagFiles, err := pairs("replace_tag_file", f.tagFiles)
	if err != nil {
		return nil, err
	}
	for _, p := range tagFiles {
		cfg.TagFiles = append(cfg.TagFiles, config.TagFile{Name: p[0], Path: p[1]})
	}

	return cfg, nil
}

// run loads the rules and processes the input
func (a *app) run(ctx context.Context, input string) error {
	level := zerolog.ErrorLevel
	if a.flags.debug {
		level = zerolog.DebugLevel
	}
	logger := log.New(a.stdout, a.stderr, level)
	logger.SetVerbose(a.flags.verbose)
	ctx = log.NewContext(ctx, logger)

	rules := &config.Config{}
	if a.flags.configFile != "" {
		loaded, err := config.Load(ctx, a.flags.configFile)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}
		rules = loaded
	}

	cliRules, err := a.flags.rules()
	if err != nil {
		return err
	}
	rules.Merge(cliRules)

	logger.Zerolog().Debug().
		Str("input", input).
		Str("rules_file", rules.Location()).
		Str("rules", rules.String()).
		Msg("starting")

	tagger, err := operation.New(ctx, operation.Options{
		InputPath:  input,
		OutputPath: a.flags.outputFile,
		Rules:      rules,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if _, err := tagger.Process(ctx); err != nil {
		return err
	}

	return nil
}
