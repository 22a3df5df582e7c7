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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

type hclReplace struct {
	Expr string `hcl:"expr,label"`
	With string `hcl:"with"`
}

type hclTag struct {
	Name  string `hcl:"name,label"`
	Value string `hcl:"value"`
}

type hclTagFile struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

type hclConfig struct {
	Remove        []string     `hcl:"remove,optional"`
	Replace       []hclReplace `hcl:"replace,block"`
	Tags          []hclTag     `hcl:"tag,block"`
	TagFiles      []hclTagFile `hcl:"tag_file,block"`
	Exclude       []string     `hcl:"exclude,optional"`
	Recursive     bool         `hcl:"recursive,optional"`
	QuoteTagNames bool         `hcl:"quote_tag_names,optional"`
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the rules from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Remove:        hclCfg.Remove,
		Exclude:       hclCfg.Exclude,
		Recursive:     hclCfg.Recursive,
		QuoteTagNames: hclCfg.QuoteTagNames,
	}
	for _, r := range hclCfg.Replace {
		cfg.Replace = append(cfg.Replace, Replacement{Expr: r.Expr, With: r.With})
	}
	for _, t := range hclCfg.Tags {
		cfg.Tags = append(cfg.Tags, Tag{Name: t.Name, Value: t.Value})
	}
	for _, t := range hclCfg.TagFiles {
		cfg.TagFiles = append(cfg.TagFiles, TagFile{Name: t.Name, Path: t.Path})
	}

	return cfg, nil
}
