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

package spec

import (
	"math"
	"strconv"
	"strings"

	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/sdk/warp"
)

// DefaultTol 設定檔沒有給 tol 時使用的預設值
const DefaultTol float64 = 1e-10

// Job 描述一次 rescale：輸入 profile 與四個可選的目標值。
//
// 未給定（nil）的目標值會在引擎端依輸入推導，因此 0 與「未給定」是不同的：
// 0 會在驗證時被拒絕，而不是被當成預設。
type Job struct {
	Name           string       `yaml:"name" json:"name"`
	Values         []float64    `yaml:"values" json:"values"`
	TargetSum      *float64     `yaml:"target_sum,omitempty" json:"target_sum,omitempty"`
	TargetMaxValue *float64     `yaml:"target_max_value,omitempty" json:"target_max_value,omitempty"`
	TargetMaxRel   *float64     `yaml:"target_max_rel,omitempty" json:"target_max_rel,omitempty"`
	MaxValue       *float64     `yaml:"max_value,omitempty" json:"max_value,omitempty"`
	Tol            float64      `yaml:"tol,omitempty" json:"tol,omitempty"`
	Variant        string       `yaml:"variant,omitempty" json:"variant,omitempty"`
	VariantKind    warp.Variant `yaml:"-" json:"-"`
}

// JobFile 一個設定檔可以包含多個 Job
type JobFile struct {
	Jobs []*Job `yaml:"jobs" json:"jobs"`
}

// Init 正規化欄位並做結構檢查。數值是否可達（目標總和範圍等）由引擎判斷。
func (j *Job) Init() error {
	if j == nil {
		return errs.Invalidf("job is nil")
	}
	j.Name = strings.ToLower(strings.TrimSpace(j.Name))
	if len(j.Values) == 0 {
		return errs.Invalidf("job %q: values required", j.Name)
	}
	for i, v := range j.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errs.Invalidf("job %q: value at %d must be finite and >= 0: %g", j.Name, i, v)
		}
	}
	if j.Tol == 0 {
		j.Tol = DefaultTol
	}
	if j.Tol <= 0 || j.Tol >= 1 {
		return errs.Invalidf("job %q: tol must be in (0, 1): %g", j.Name, j.Tol)
	}
	v, err := warp.ParseVariant(j.Variant)
	if err != nil {
		return errs.Wrap(err, "job "+j.Name)
	}
	j.VariantKind = v
	j.Variant = v.String()
	return nil
}

// Init 逐一初始化，並檢查具名 Job 的名稱唯一
func (f *JobFile) Init() error {
	if f == nil || len(f.Jobs) == 0 {
		return errs.Invalidf("job file has no jobs")
	}
	seen := make(map[string]struct{}, len(f.Jobs))
	for i, j := range f.Jobs {
		if err := j.Init(); err != nil {
			return errs.WrapWithExtra(err, "job file init failed", "index "+strconv.Itoa(i))
		}
		if j.Name == "" {
			continue
		}
		if _, ok := seen[j.Name]; ok {
			return errs.Invalidf("duplicate job name: %q", j.Name)
		}
		seen[j.Name] = struct{}{}
	}
	return nil
}

// Find 依名稱找 Job（不分大小寫）
func (f *JobFile) Find(name string) (*Job, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, j := range f.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return nil, false
}

// Float 方便從字面值取得 *float64
func Float(v float64) *float64 {
	return &v
}
