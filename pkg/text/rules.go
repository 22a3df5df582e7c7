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
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ TagDelimiter surrounds every tag name in the processed text
const TagDelimiter = "@@"

// 🔄 ReplaceRule pairs a pattern with an expansion template
type ReplaceRule struct {
	Pattern  *regexp.Regexp // Compiled with dot matching newlines
	Template string         // Go expansion template derived from Source
	Source   string         // Replacement string as given by the user
}

// 🏷️ TagRule substitutes a tag with a literal value
type TagRule struct {
	Name    string
	Pattern *regexp.Regexp
	Value   string
}

// 📄 FileTagRule substitutes a tag with the contents of a file
type FileTagRule struct {
	Name    string
	Pattern *regexp.Regexp
	Path    string
}

// 📚 RuleSet holds every compiled rule, in application order
type RuleSet struct {
	Remove   []*regexp.Regexp
	Replace  []ReplaceRule
	Tags     []TagRule
	FileTags []FileTagRule
}

// 🔍 IsEmpty reports whether the rule set would leave content untouched
func (rs RuleSet) IsEmpty() bool {
	return len(rs.Remove) == 0 && len(rs.Replace) == 0 && len(rs.Tags) == 0 && len(rs.FileTags) == 0
}

// 🧩 CompileRemove compiles a removal pattern with dot matching newlines
func CompileRemove(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?s)" + expr)
	if err != nil {
		return nil, errors.Errorf("compiling remove expression %q: %w", expr, err)
	}
	return re, nil
}

// 🧩 CompileReplace compiles a replace pattern and translates its replacement string.
// Back-references use the \1, \g<1> and \g<name> forms; a "$" is always literal.
func CompileReplace(expr, with string) (ReplaceRule, error) {
	re, err := regexp.Compile("(?s)" + expr)
	if err != nil {
		return ReplaceRule{}, errors.Errorf("compiling replace expression %q: %w", expr, err)
	}

	tmpl, err := translateTemplate(re, with)
	if err != nil {
		return ReplaceRule{}, errors.Errorf("parsing replacement for %q: %w", expr, err)
	}

	return ReplaceRule{Pattern: re, Template: tmpl, Source: with}, nil
}

// 🧩 CompileTag builds the rule for a literal tag
func CompileTag(name, value string, quote bool) (TagRule, error) {
	re, err := compileTagPattern(name, quote)
	if err != nil {
		return TagRule{}, err
	}
	return TagRule{Name: name, Pattern: re, Value: value}, nil
}

// 🧩 CompileFileTag builds the rule for a file-sourced tag
func CompileFileTag(name, path string, quote bool) (FileTagRule, error) {
	re, err := compileTagPattern(name, quote)
	if err != nil {
		return FileTagRule{}, err
	}
	return FileTagRule{Name: name, Pattern: re, Path: path}, nil
}

// tag names are pattern fragments unless quote is set
func compileTagPattern(name string, quote bool) (*regexp.Regexp, error) {
	if quote {
		name = regexp.QuoteMeta(name)
	}
	re, err := regexp.Compile(TagDelimiter + name + TagDelimiter)
	if err != nil {
		return nil, errors.Errorf("compiling tag %q: %w", name, err)
	}
	return re, nil
}

var templateEscapes = map[byte]string{
	'n':  "\n",
	't':  "\t",
	'r':  "\r",
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'v':  "\v",
	'\\': `\`,
}

// translateTemplate rewrites a backslash-style replacement string into the
// "$"-based syntax understood by regexp.Expand.
func translateTemplate(re *regexp.Regexp, src string) (string, error) {
	var b strings.Builder
	groups := re.NumSubexp()

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '$':
			b.WriteString("$$")
			continue
		case c != '\\' || i+1 == len(src):
			b.WriteByte(c)
			continue
		}

		next := src[i+1]
		switch {
		case next == 'g':
			end := strings.IndexByte(src[i+2:], '>')
			if i+2 >= len(src) || src[i+2] != '<' || end < 0 {
				return "", errors.Errorf("missing group name at position %d", i)
			}
			ref := src[i+3 : i+2+end]
			if ref == "" {
				return "", errors.Errorf("missing group name at position %d", i)
			}
			if n, err := strconv.Atoi(ref); err == nil {
				if n < 0 || n > groups {
					return "", errors.Errorf("invalid group reference %d", n)
				}
				ref = strconv.Itoa(n)
			} else if re.SubexpIndex(ref) < 0 {
				return "", errors.Errorf("unknown group name %q", ref)
			}
			b.WriteString("${" + ref + "}")
			i += 2 + end
		case next == '0':
			b.WriteByte(0)
			i++
		case next >= '1' && next <= '9':
			digits := src[i+1 : i+2]
			if i+2 < len(src) && src[i+2] >= '0' && src[i+2] <= '9' {
				digits = src[i+1 : i+3]
			}
			n, _ := strconv.Atoi(digits)
			if n > groups {
				return "", errors.Errorf("invalid group reference %d", n)
			}
			b.WriteString("${" + digits + "}")
			i += len(digits)
		default:
			if esc, ok := templateEscapes[next]; ok {
				b.WriteString(esc)
			} else {
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
		}
	}

	return b.String(), nil
}
