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

package catalog

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/profilescale/errs"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func TestNewAuto(t *testing.T) {
	fsA := fstest.MapFS{
		"a.yaml":    file("jobs:\n  - name: Alpha\n    values: [1, 2, 3]\n  - values: [9]\n"),
		"README.md": file("ignored"),
	}
	fsB := fstest.MapFS{
		"b.json": file(`{"jobs":[{"name":"beta","values":[4,5],"variant":"pow"}]}`),
	}
	c, err := NewAuto(fsA, fsB)
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsFrozen() {
		t.Fatalf("NewAuto should freeze the catalog")
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("names got %v", names)
	}
	e, ok := c.GetByName(" BETA ")
	if !ok || e.ConfigName != "b.json" || e.Size != 2 || e.Variant != "pow" {
		t.Fatalf("entry got %+v %v", e, ok)
	}
	j, err := c.JobByName("alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(j.Values) != 3 {
		t.Fatalf("job got %+v", j)
	}
	// 每次都重新解析：修改回傳值不影響下一次
	j.Values[0] = 100
	j2, _ := c.JobByName("alpha")
	if j2.Values[0] != 1 {
		t.Fatalf("JobByName must return a fresh copy")
	}
	if _, err := c.JobByName("gamma"); !errs.IsKind(err, errs.InvalidInput) {
		t.Fatalf("unknown job got %v", err)
	}
	if err := c.Register(Entry{Name: "x", ConfigName: "a.yaml"}); err == nil {
		t.Fatalf("frozen catalog must reject Register")
	}
	if all := c.All(); len(all) != 2 || all[0].Name != "alpha" {
		t.Fatalf("All got %+v", all)
	}
}

func TestDuplicateAcrossFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": file("jobs:\n  - name: same\n    values: [1]\n"),
		"b.yml":  file("jobs:\n  - name: same\n    values: [2]\n"),
	}
	_, err := NewAuto(fsys)
	if !errors.Is(err, ErrDupName) {
		t.Fatalf("want ErrDupName, got %v", err)
	}
}

func TestFlatFS(t *testing.T) {
	fsys := fstest.MapFS{
		"sub/a.yaml": file("jobs:\n  - name: a\n    values: [1]\n"),
	}
	if _, err := NewAuto(fsys); err == nil {
		t.Fatalf("nested directories should be rejected")
	}
	if _, err := New(); err == nil {
		t.Fatalf("no fs should be rejected")
	}
}

func TestBrokenFile(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yaml": file("jobs:\n  - name: a\n    values: [-1]\n"),
	}
	if _, err := NewAuto(fsys); !errs.IsKind(err, errs.InvalidInput) {
		t.Fatalf("invalid job should surface as InvalidInput, got %v", err)
	}
}

func TestValidFileName(t *testing.T) {
	ok := []string{"a.yaml", "B.YML", "c.json"}
	bad := []string{"", "../a.yaml", "dir/a.yaml", ".hidden.yaml", "a.txt", "c:a.json"}
	for _, n := range ok {
		if err := validFileName(n); err != nil {
			t.Fatalf("%q should be valid: %v", n, err)
		}
	}
	for _, n := range bad {
		if err := validFileName(n); err == nil {
			t.Fatalf("%q should be invalid", n)
		}
	}
}

func TestManualRegister(t *testing.T) {
	fsys := fstest.MapFS{"a.yaml": file("jobs:\n  - name: a\n    values: [1]\n")}
	c, err := New(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Register(Entry{Name: "a", ConfigName: "missing.yaml"}); err == nil {
		t.Fatalf("missing config should fail")
	}
	if err := c.Register(Entry{Name: "a", ConfigName: "a.yaml"}, Entry{Name: "A", ConfigName: "a.yaml"}); !errors.Is(err, ErrDupName) {
		t.Fatalf("duplicate in one call got %v", err)
	}
	if err := c.Register(Entry{Name: "a", ConfigName: "a.yaml"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.GetByName("a"); !ok {
		t.Fatalf("registered entry missing")
	}
}
