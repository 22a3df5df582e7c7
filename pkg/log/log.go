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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 12 // Width for status text
)

// 🎯 FileOperation describes one processed file
type FileOperation struct {
	Path         string // File that was read
	Output       string // File that was written, empty when in place
	IsModified   bool   // Whether the content changed
	Replacements int    // Number of substitutions made
}

// 🎯 Logger writes human progress to the console and structured records to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	verbose bool
	mu      sync.Mutex
}

// 🏭 New creates a new logger; diagnostics go to diag as zerolog console output
func New(console, diag io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: diag, NoColor: color.NoColor}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔊 SetVerbose switches progress from one dot per file to one line per file
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// 📜 Zerolog returns the structured logger
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 🎯 NewContext adds the structured logger to context, for zerolog.Ctx
func NewContext(ctx context.Context, l *Logger) context.Context {
	return l.zlog.WithContext(ctx)
}

// 📝 formatFileOperation formats a file operation for verbose display
func (l *Logger) formatFileOperation(op FileOperation) string {
	symbol := '•'
	symbolColor := color.FgCyan
	status := "unchanged"
	if op.IsModified {
		symbol = '⟳'
		symbolColor = color.FgBlue
		status = "modified"
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%-*s", statusWidth, status),
		color.New(color.Faint).Sprintf("%d replacements", op.Replacements))

	if op.Output != "" && op.Output != op.Path {
		line += color.New(color.FgYellow).Sprintf(" → %s", op.Output)
	}
	return line
}

// 📝 Progress reports a finished file: a dot, or a full line when verbose
func (l *Logger) Progress(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.verbose {
		fmt.Fprintln(l.console, l.formatFileOperation(op))
	} else {
		fmt.Fprint(l.console, color.New(color.FgGreen).Sprint("."))
	}

	l.zlog.Debug().
		Str("file", op.Path).
		Str("output", op.Output).
		Bool("is_modified", op.IsModified).
		Int("replacements", op.Replacements).
		Msg("file processed")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.Bold).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
