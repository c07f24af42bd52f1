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

// Package catalog 管理具名 Job 的目錄：哪些 Job 存在、各自放在哪個設定檔。
//
// 設定檔來源一律以 fs.FS 注入（go:embed 或 os.DirFS），而且必須是扁平目錄。
package catalog

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/spec"
)

var ErrDupName = errs.Invalidf("duplicate job name")

type Entry struct {
	Name       string `json:"name" yaml:"name"`
	ConfigName string `json:"config" yaml:"config"`
	Size       int    `json:"size" yaml:"size"`
	Variant    string `json:"variant" yaml:"variant"`
}

type Catalog struct {
	byName map[string]Entry
	names  []string // 用來穩定排序
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byName: map[string]Entry{},
		names:  make([]string, 0, 32),
		config: multFS,
	}, nil
}

// NewAuto 建立 Catalog 並掃描所有設定檔，把其中每個具名 Job 註冊進來，最後凍結。
func NewAuto(cfg ...fs.FS) (*Catalog, error) {
	c, err := New(cfg...)
	if err != nil {
		return nil, err
	}
	for _, name := range c.config.Names() {
		f, err := c.jobFile(name)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "catalog scan failed", name)
		}
		entries := make([]Entry, 0, len(f.Jobs))
		for _, j := range f.Jobs {
			if j.Name == "" {
				continue
			}
			entries = append(entries, Entry{
				Name:       j.Name,
				ConfigName: name,
				Size:       len(j.Values),
				Variant:    j.Variant,
			})
		}
		if err := c.Register(entries...); err != nil {
			return nil, err
		}
	}
	c.Freeze()
	return c, nil
}

func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.Invalidf("can not register when catalog already frozen")
	}
	seenName := map[string]struct{}{}
	for i := range metas {
		meta := &metas[i]
		meta.Name = strings.ToLower(strings.TrimSpace(meta.Name))
		if meta.Name == "" {
			return errs.Invalidf("job name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[meta.ConfigName]; !ok {
			return errs.Invalidf("config file not found: %s", meta.ConfigName)
		}
		if _, ok := c.byName[meta.Name]; ok {
			return errs.WrapWithExtra(ErrDupName, "register failed", meta.Name)
		}
		if _, ok := seenName[meta.Name]; ok {
			return errs.WrapWithExtra(ErrDupName, "register failed", meta.Name)
		}
		seenName[meta.Name] = struct{}{}
	}
	for _, meta := range metas {
		c.byName[meta.Name] = meta
		c.names = append(c.names, meta.Name)
	}
	sort.Strings(c.names)
	return nil
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	m, ok := c.byName[name]
	return m, ok
}

func (c *Catalog) Names() []string {
	if len(c.names) == 0 {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) All() []Entry {
	m := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		m = append(m, c.byName[n])
	}
	return m
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

// JobByName
//
// 讀取 Job 所在的設定檔、初始化並回傳該 Job。每次都重新解析，呼叫端可以自由修改回傳值。
func (c *Catalog) JobByName(name string) (*spec.Job, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Invalidf("job does not exist in catalog: %q", name)
	}
	f, err := c.jobFile(e.ConfigName)
	if err != nil {
		return nil, err
	}
	j, ok := f.Find(e.Name)
	if !ok {
		return nil, errs.Fatalf("job %q missing from %s", e.Name, e.ConfigName)
	}
	return j, nil
}

func (c *Catalog) jobFile(configName string) (*spec.JobFile, error) {
	src, ok := c.config.GetFS(configName)
	if !ok {
		return nil, errs.Invalidf("file name does not exist in catalog: %s", configName)
	}
	raw, err := fs.ReadFile(src, configName)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return spec.GetJobFileByExt(configName, raw)
}

func validFileName(file string) error {
	if file == "" {
		return errs.Invalidf("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.Invalidf("invalid config filename: %q (must be a basename)", file)
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	if !isConfigName(file) {
		return errs.Invalidf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	// 3) 不能以 . 開頭
	if strings.HasPrefix(file, ".") {
		return errs.Invalidf("invalid config filename: %q (cannot start with '.')", file)
	}
	return nil
}

func isConfigName(file string) bool {
	lower := strings.ToLower(file)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.Invalidf("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.Invalidf("fs[%d] is nil", i)
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 64),
	}

	for i := range src {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.Invalidf("job FS must be flat (no subdirectories): %q", path)
			}
			// 其他檔案（README 等）直接忽略
			if !isConfigName(path) || strings.HasPrefix(path, ".") {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.Invalidf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i)
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("walk fs[%d]", i))
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Names 依字典序回傳所有設定檔名
func (m *multiFS) Names() []string {
	out := make([]string, 0, len(m.index))
	for n := range m.index {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
