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
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/sinedied/ntk-tagger/pkg/log"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	// fatal errors go to stderr, never to the progress stream
	errLog := log.New(stderr, io.Discard, zerolog.Disabled)

	normalized, err := normalizeArgs(args)
	if err != nil {
		errLog.Errorf("%v", err)
		fmt.Fprintln(stderr, "Run 'tagger --help' for usage.")
		return 1
	}

	cmd := a.command()
	cmd.SetArgs(normalized)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if a.flags.debug {
			// stack trace from tozd errors
			errLog.Errorf("%+v", err)
		} else {
			errLog.Errorf("%v", err)
		}
		return 1
	}

	return 0
}
