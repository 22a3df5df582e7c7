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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// pairFlags take two values on the command line, e.g. "-e EXPR STRING"
var pairFlags = map[string]string{
	"-e":                 "replace_expr",
	"--replace_expr":     "replace_expr",
	"-t":                 "replace_tag",
	"--replace_tag":      "replace_tag",
	"-f":                 "replace_tag_file",
	"--replace_tag_file": "replace_tag_file",
}

// valueFlags take exactly one value, which must not be mistaken for a flag
var valueFlags = map[string]bool{
	"-r": true, "--remove_expr": true,
	"-o": true, "--output_file": true,
	"-c": true, "--config": true,
	"-x": true, "--exclude": true,
}

// normalizeArgs rewrites every two-value flag into two "--name=value" flags so
// pflag can collect them in order; "-e A B" becomes "--replace_expr=A --replace_expr=B".
func normalizeArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		if valueFlags[arg] {
			out = append(out, arg)
			if i+1 < len(args) {
				out = append(out, args[i+1])
				i++
			}
			continue
		}

		name, first, inline := strings.Cut(arg, "=")
		long, ok := pairFlags[name]
		if !ok {
			var cluster string
			cluster, name, first, inline, ok = splitCluster(arg)
			if !ok {
				out = append(out, arg)
				continue
			}
			if cluster != "" {
				out = append(out, cluster)
			}
			long = pairFlags[name]
		}

		need := 2
		if inline {
			need = 1
		}
		if len(args)-i-1 < need {
			return nil, errors.Errorf("flag %s needs two arguments", name)
		}

		var values []string
		if inline {
			values = []string{first, args[i+1]}
		} else {
			values = []string{args[i+1], args[i+2]}
		}
		i += need

		for _, v := range values {
			out = append(out, "--"+long+"="+v)
		}
	}

	return out, nil
}

// pairs groups a flat list collected from a two-value flag
// splitCluster finds a pair flag inside a cluster of short flags, e.g. -Re or
// -tVERSION. The letters before it are returned as their own cluster and the
// letters after it as the attached first value. A value flag ends the search.
func splitCluster(arg string) (cluster, flag, first string, attached, ok bool) {
	if len(arg) < 3 || arg[0] != '-' || arg[1] == '-' {
		return "", "", "", false, false
	}

	for k := 1; k < len(arg); k++ {
		f := "-" + arg[k:k+1]
		if valueFlags[f] {
			return "", "", "", false, false
		}
		if _, isPair := pairFlags[f]; !isPair {
			continue
		}
		if k > 1 {
			cluster = "-" + arg[1:k]
		}
		if k+1 < len(arg) {
			return cluster, f, strings.TrimPrefix(arg[k+1:], "="), true, true
		}
		return cluster, f, "", false, true
	}

	return "", "", "", false, false
}

func pairs(flag string, values []string) ([][2]string, error) {
	if len(values)%2 != 0 {
		return nil, errors.Errorf("flag --%s needs two arguments", flag)
	}
	out := make([][2]string, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		out = append(out, [2]string{values[i], values[i+1]})
	}
	return out, nil
}
