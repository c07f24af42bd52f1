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

// Package rootfind 提供純量函數的區間求根器（bracketing root finder）。
//
// 呼叫端給定連續函數 f 與一個 f 變號的區間 [lo, hi]，求根器回傳 f(x) ≈ 0 的 x。
// 找不到變號、或超過迭代上限時一律回傳 errs.SolverNonConvergence，不回傳近似值。
package rootfind

import (
	"math"

	"github.com/zintix-labs/profilescale/errs"
)

// Func 待求根的純量函數
type Func func(x float64) float64

// Result 求根結果
type Result struct {
	Root       float64 `json:"root"`
	Iterations int     `json:"iterations"`
	FuncCalls  int     `json:"func_calls"`
	Converged  bool    `json:"converged"`
}

// Solver 是求根器的抽象，方便替換演算法或在測試中注入。
type Solver interface {
	Solve(f Func, lo, hi float64) (Result, error)
}

// Settings 收斂條件：|區間半寬| < (XTol + RTol*|x|)/2 即視為收斂。
// MaxIter 是執行時間的上限，超過視同不收斂。
type Settings struct {
	XTol    float64
	RTol    float64
	MaxIter int
}

// DefaultSettings 與常見的 brentq 預設值一致
var DefaultSettings = Settings{
	XTol:    2e-12,
	RTol:    4 * epsilon,
	MaxIter: 100,
}

const epsilon = 0x1p-52

func (s Settings) norm() Settings {
	if s.XTol <= 0 {
		s.XTol = DefaultSettings.XTol
	}
	if s.RTol < 4*epsilon {
		s.RTol = 4 * epsilon
	}
	if s.MaxIter < 1 {
		s.MaxIter = DefaultSettings.MaxIter
	}
	return s
}

// checkBracket 驗證區間並計算端點值；若端點剛好是根，done 為 true。
func checkBracket(f Func, lo, hi float64) (flo, fhi float64, res Result, done bool, err error) {
	if f == nil {
		return 0, 0, res, false, errs.Invalidf("rootfind: nil function")
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return 0, 0, res, false, errs.Invalidf("rootfind: invalid bracket [%g, %g]", lo, hi)
	}
	flo, fhi = f(lo), f(hi)
	res.FuncCalls = 2
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return flo, fhi, res, false, errs.NonConvergencef("rootfind: f is NaN at bracket ends f(%g)=%g f(%g)=%g", lo, flo, hi, fhi)
	}
	if flo == 0 {
		res.Root, res.Converged = lo, true
		return flo, fhi, res, true, nil
	}
	if fhi == 0 {
		res.Root, res.Converged = hi, true
		return flo, fhi, res, true, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return flo, fhi, res, false, errs.NonConvergencef("rootfind: no sign change in [%g, %g]: f=%g, %g", lo, hi, flo, fhi)
	}
	return flo, fhi, res, false, nil
}
