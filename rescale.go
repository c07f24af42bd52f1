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

package profilescale

import (
	"log/slog"
	"math"

	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/sdk/warp"
	"gonum.org/v1/gonum/floats"
)

// Targets 是解析完預設值之後，本次 rescale 實際使用的目標。
type Targets struct {
	Sum            float64 `json:"sum" yaml:"sum"`
	TheoreticalMax float64 `json:"theoretical_max" yaml:"theoretical_max"`
	MaxRatio       float64 `json:"max_ratio" yaml:"max_ratio"`
	Max            float64 `json:"max" yaml:"max"`
	// 輸入端
	InputTheoreticalMax float64 `json:"input_theoretical_max" yaml:"input_theoretical_max"`
	InputMaxRatio       float64 `json:"input_max_ratio" yaml:"input_max_ratio"`
}

// Result 單次 rescale 的結果。Warnings 只會包含非致命的 PrecisionWarning。
type Result struct {
	Values   []float64    `json:"values" yaml:"values"`
	Alpha    float64      `json:"alpha" yaml:"alpha"`
	Beta     float64      `json:"beta" yaml:"beta"`
	Variant  warp.Variant `json:"variant" yaml:"variant"`
	Tol      float64      `json:"tol" yaml:"tol"`
	Targets  Targets      `json:"targets" yaml:"targets"`
	Range    Range        `json:"range" yaml:"range"`
	Warnings []error      `json:"-" yaml:"-"`
}

// NormResult 正規化座標（max=1）下的結果
type NormResult struct {
	Values   []float64
	Alpha    float64
	Beta     float64
	Range    Range
	Warnings []error
}

// Rescale 產生新的 profile，使其總和與最大值同時命中目標，並保持原本的排序。
//
// 預設值解析（彼此獨立）：
//   - 輸入理論最大值 = MaxValue，未給定時為輸入實際最大值
//   - 目標總和 = TargetSum，未給定時為輸入總和
//   - 目標理論最大值 = TargetMaxValue，未給定時為輸入理論最大值
//   - 目標比例 = TargetMaxRel，未給定時為 輸入實際最大值/輸入理論最大值
//   - 目標最大值 = 目標理論最大值 * 目標比例
//
// 任何致命錯誤都不回傳部分結果。
func Rescale(values []float64, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	if err := validProfile(values); err != nil {
		return nil, err
	}

	xsMax := floats.Max(values)
	xsSum := floats.Sum(values)

	t := Targets{InputTheoreticalMax: xsMax}
	if cfg.maxValue != nil {
		t.InputTheoreticalMax = *cfg.maxValue
	}
	t.InputMaxRatio = xsMax / t.InputTheoreticalMax
	t.Sum = xsSum
	if cfg.targetSum != nil {
		t.Sum = *cfg.targetSum
	}
	t.TheoreticalMax = t.InputTheoreticalMax
	if cfg.targetMaxValue != nil {
		t.TheoreticalMax = *cfg.targetMaxValue
	}
	t.MaxRatio = t.InputMaxRatio
	if cfg.targetMaxRel != nil {
		t.MaxRatio = *cfg.targetMaxRel
	}
	t.Max = t.TheoreticalMax * t.MaxRatio

	// 正規化：用除法，確保最大值那一格恰好是 1
	norm := make([]float64, len(values))
	for i, x := range values {
		norm[i] = x / xsMax
	}

	nr, err := rescaleNorm(norm, t.Sum/t.Max, cfg)
	if err != nil {
		return nil, err
	}

	// 反正規化
	ys := floats.ScaleTo(make([]float64, len(nr.Values)), t.Max, nr.Values)

	if err := checkPost(ys, t); err != nil {
		return nil, err
	}
	return &Result{
		Values:   ys,
		Alpha:    nr.Alpha,
		Beta:     nr.Beta,
		Variant:  cfg.variant,
		Tol:      cfg.tol,
		Targets:  t,
		Range:    nr.Range,
		Warnings: nr.Warnings,
	}, nil
}

// RescaleValues 與 Rescale 相同，只回傳結果 profile。
func RescaleValues(values []float64, opts ...Option) ([]float64, error) {
	r, err := Rescale(values, opts...)
	if err != nil {
		return nil, err
	}
	return r.Values, nil
}

// RescaleNorm 在正規化座標（max=1）下把 valuesNorm 調整成總和 targetSum。
// valuesNorm 必須都在 [0,1] 且至少有一個 1。目標值相關的 Option 在這裡不生效。
func RescaleNorm(valuesNorm []float64, targetSum float64, opts ...Option) (*NormResult, error) {
	cfg := newConfig(opts)
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	return rescaleNorm(valuesNorm, targetSum, cfg)
}

func rescaleNorm(valuesNorm []float64, targetSum float64, cfg *config) (*NormResult, error) {
	if len(valuesNorm) == 0 {
		return nil, errs.Invalidf("normalized profile is empty")
	}
	for i, x := range valuesNorm {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return nil, errs.Invalidf("normalized value out of [0,1] at %d: %g", i, x)
		}
	}
	r := Bounds(valuesNorm, cfg.tol)
	if r.Ones == 0 {
		return nil, errs.Invalidf("normalized profile has no element equal to 1")
	}
	if !finite(targetSum) || !r.Contains(targetSum) {
		return nil, errs.Unachievablef("normalized target sum %g outside achievable range %s", targetSum, r)
	}

	alpha, err := FindAlpha(valuesNorm, targetSum, cfg.tol, cfg.variant, cfg.solver)
	if err != nil {
		return nil, err
	}
	br := Blend(valuesNorm, targetSum, alpha, cfg.tol, cfg.variant)
	for _, w := range br.Warnings {
		cfg.log.Warn("rescale.precision",
			slog.String("variant", cfg.variant.String()),
			slog.Float64("alpha", alpha),
			slog.Float64("beta", br.Beta),
			slog.Float64("target", targetSum),
			slog.Any("warn", w),
		)
	}
	return &NormResult{
		Values:   br.Values,
		Alpha:    alpha,
		Beta:     br.Beta,
		Range:    r,
		Warnings: br.Warnings,
	}, nil
}

func validProfile(values []float64) error {
	if len(values) == 0 {
		return errs.Invalidf("profile is empty")
	}
	for i, x := range values {
		if !finite(x) {
			return errs.Invalidf("profile value is not finite at %d: %g", i, x)
		}
		if x < 0 {
			return errs.Invalidf("profile value is negative at %d: %g", i, x)
		}
	}
	if floats.Max(values) <= 0 {
		return errs.Invalidf("profile needs at least one positive value")
	}
	return nil
}

// checkPost 結果的不變量；任何一條失敗都代表實作有 bug。
func checkPost(ys []float64, t Targets) error {
	if got := floats.Max(ys); !isClose(got, t.Max) {
		return errs.Postconditionf("result max %.17g != target max %.17g", got, t.Max)
	}
	if got := floats.Sum(ys); !isClose(got, t.Sum) {
		return errs.Postconditionf("result sum %.17g != target sum %.17g", got, t.Sum)
	}
	if got := floats.Min(ys); got < 0 {
		return errs.Postconditionf("result has negative value %g", got)
	}
	return nil
}

// isClose |a-b| <= atol + rtol*|b|
func isClose(a, b float64) bool {
	const (
		rtol = 1e-5
		atol = 1e-8
	)
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}
