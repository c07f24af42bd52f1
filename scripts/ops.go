// Copyright 2025 Zintix Labs
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
	"fmt"
	"os"
	"sort"
	"strings"
)

// task 一個腳本任務：依序執行的 go 指令
type task struct {
	desc  string
	steps [][]string
	// filter 非 nil 時只印出符合的行（模擬 grep）
	filter func(line string) bool
}

var tasks = map[string]task{
	"test": {
		desc: "go test ./... -cover -count=1 (only ok/FAIL lines)",
		steps: [][]string{
			{"go", "clean", "-testcache"},
			{"go", "test", "./...", "-cover", "-count=1"},
		},
		filter: func(line string) bool {
			return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL")
		},
	},
	"test-race": {
		desc:  "go test -race ./...",
		steps: [][]string{{"go", "test", "-race", "-count=1", "./..."}},
		filter: func(line string) bool {
			return !strings.Contains(line, "[no test files]")
		},
	},
	"test-detail": {
		desc:  "go test ./... -v -count=1",
		steps: [][]string{{"go", "test", "./...", "-v", "-count=1"}},
		filter: func(line string) bool {
			return !strings.Contains(line, "[no test files]")
		},
	},
	"demo": {
		desc:  "batch-run every embedded demo job",
		steps: [][]string{{"go", "run", "./cmd/run", "-all", "-log-mode", "silence"}},
	},
	"pgo": {
		desc:  "cpu profile of the demo batch into build/profiling/cpu.pprof",
		steps: [][]string{{"go", "run", "./cmd/run", "-all", "-log-mode", "silence", "-p", "cpu"}},
	},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	name := os.Args[1]
	t, ok := tasks[name]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", name))
		usage()
		os.Exit(1)
	}
	PrintGreen("running " + name)
	for _, step := range t.steps {
		if err := run(step, t.filter); err != nil {
			PrintRed(fmt.Sprintf("\n%s failed: %v", strings.Join(step, " "), err))
			os.Exit(1)
		}
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-12s %s\n", n, tasks[n].desc)
	}
}
