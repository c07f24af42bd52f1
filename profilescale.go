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

// Package profilescale 把非負的 profile（直方圖、權重向量、負載曲線…）重新縮放，
// 使其同時命中「目標總和」與「目標最大值」，並嚴格保持原本的排序。
//
// 單純線性縮放會固定 sum/max 的比例，無法同時滿足兩個目標。
// 本套件的做法：
//  1. 以最大值正規化（max=1）。
//  2. 用單調 warp（exp 或 pow 家族，單一形狀參數 alpha）重新分配質量，0→0、1→1 保持不變。
//  3. 以區間求根找出讓總和命中目標的 alpha。
//  4. 用線性插值（beta）修正殘差，再乘回目標最大值。
//
// 計算本身是純函數：沒有共享狀態，可在多個 goroutine 同時呼叫。
//
// Engine 則是給 CLI / HTTP 服務用的組裝入口：持有一份 Job 目錄（catalog）與 logger。
package profilescale

import (
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/profilescale/catalog"
	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/sdk/rootfind"
	"github.com/zintix-labs/profilescale/spec"
)

// Engine 組裝 Job 目錄、logger 與求根器，提供以 Job 為單位的執行入口。
type Engine struct {
	cat    *catalog.Catalog
	log    *slog.Logger
	solver rootfind.Solver
}

// New 建立 Engine。
//
//   - log 為 nil 時使用 slog.Default()。
//   - cfgs 是 Job 設定檔來源（go:embed 或 os.DirFS），可以為空：此時只能執行呼叫端直接給的 Job。
func New(log *slog.Logger, cfgs ...fs.FS) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{log: log}
	if len(cfgs) > 0 {
		cat, err := catalog.NewAuto(cfgs...)
		if err != nil {
			return nil, errs.Wrap(err, "engine: build catalog")
		}
		e.cat = cat
	}
	return e, nil
}

// SetSolver 替換預設的求根器（nil 表示回到預設）
func (e *Engine) SetSolver(s rootfind.Solver) {
	e.solver = s
}

func (e *Engine) Logger() *slog.Logger {
	return e.log
}

// Entries 回傳目錄中所有 Job（依名稱排序）
func (e *Engine) Entries() []catalog.Entry {
	if e.cat == nil {
		return nil
	}
	return e.cat.All()
}

// Job 依名稱從目錄取出 Job
func (e *Engine) Job(name string) (*spec.Job, error) {
	if e.cat == nil {
		return nil, errs.Invalidf("engine has no job catalog")
	}
	return e.cat.JobByName(name)
}

// Run 執行單一 Job
func (e *Engine) Run(job *spec.Job) (*Result, error) {
	if job == nil {
		return nil, errs.Invalidf("job is nil")
	}
	if err := job.Init(); err != nil {
		return nil, err
	}
	return e.run(job)
}

// run 假設 job 已經 Init 過
func (e *Engine) run(job *spec.Job) (*Result, error) {
	res, err := Rescale(job.Values, e.Options(job)...)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "rescale failed", job.Name)
	}
	return res, nil
}

// RunByName 依名稱執行目錄中的 Job
func (e *Engine) RunByName(name string) (*spec.Job, *Result, error) {
	job, err := e.Job(name)
	if err != nil {
		return nil, nil, err
	}
	res, err := e.Run(job)
	return job, res, err
}

// Options 把 Job 轉成 Rescale 的 Option
func (e *Engine) Options(job *spec.Job) []Option {
	opts := []Option{
		Tol(job.Tol),
		WithVariant(job.VariantKind),
		WithLogger(e.log.With(slog.String("job", job.Name))),
	}
	if e.solver != nil {
		opts = append(opts, WithSolver(e.solver))
	}
	if job.TargetSum != nil {
		opts = append(opts, TargetSum(*job.TargetSum))
	}
	if job.TargetMaxValue != nil {
		opts = append(opts, TargetMaxValue(*job.TargetMaxValue))
	}
	if job.TargetMaxRel != nil {
		opts = append(opts, TargetMaxRel(*job.TargetMaxRel))
	}
	if job.MaxValue != nil {
		opts = append(opts, MaxValue(*job.MaxValue))
	}
	return opts
}
