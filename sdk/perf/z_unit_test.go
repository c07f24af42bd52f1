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

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunPProf(t *testing.T) {
	Dir = t.TempDir()
	calls := 0
	exe := func() error { calls++; return nil }

	for _, mode := range []string{"", "cpu", "heap", "allocs"} {
		if err := RunPProf(exe, mode); err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
	}
	if calls != 4 {
		t.Fatalf("exe should run once per mode, got %d", calls)
	}
	for _, f := range []string{"cpu.pprof", "heap.pprof", "allocs.pprof"} {
		if st, err := os.Stat(filepath.Join(Dir, f)); err != nil || st.Size() == 0 {
			t.Fatalf("%s missing: %v", f, err)
		}
	}
	if err := RunPProf(exe, "block"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestRunPProfKeepsExeError(t *testing.T) {
	Dir = t.TempDir()
	boom := errors.New("boom")
	if err := RunPProf(func() error { return boom }, "heap"); !errors.Is(err, boom) {
		t.Fatalf("want exe error, got %v", err)
	}
}
