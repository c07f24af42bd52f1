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

// Package perf 用 runtime/pprof 包住一段執行，輸出 cpu / heap / allocs profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/profilescale/errs"
)

// Dir pprof 檔案寫入路徑
var Dir = "build/profiling"

// RunPProf 依 mode 決定 profiling 方式：空字串不做、cpu、heap、allocs。
// 回傳 exe 的錯誤；profile 寫檔失敗也會回傳。
func RunPProf(exe func() error, mode string) error {
	switch mode {
	case "":
		return exe()
	case "cpu":
		return PProfCPU(exe)
	case "heap":
		return snapshot(exe, "heap")
	case "allocs":
		return snapshot(exe, "allocs")
	default:
		return errs.Invalidf("unknown pprof mode %q (want cpu|heap|allocs)", mode)
	}
}

// PProfCPU 在 exe 執行期間開 CPU profiling，也可以當作 pgo 的輸入。
//
//	go run ./cmd/run -all -p cpu
func PProfCPU(exe func() error) error {
	f, err := create("cpu.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 之後寫出一次 heap（in-use）或 allocs（累積配置）profile。
// heap 前先 GC，讓 live objects 較準確。
func snapshot(exe func() error, name string) error {
	exeErr := exe()
	if name == "heap" {
		runtime.GC()
	}
	f, err := create(name + ".pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if prof := pprof.Lookup(name); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "write "+name+" profile")
		}
	}
	return exeErr
}

func create(file string) (*os.File, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "mkdir "+Dir)
	}
	f, err := os.Create(filepath.Join(Dir, file))
	if err != nil {
		return nil, errs.Wrap(err, "create "+file)
	}
	return f, nil
}
