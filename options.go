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
	"github.com/zintix-labs/profilescale/sdk/rootfind"
	"github.com/zintix-labs/profilescale/sdk/warp"
)

// DefaultTol 預設容許誤差
const DefaultTol float64 = 1e-10

// Option 調整單次 Rescale 的參數。未給定的目標值一律依預設規則從輸入推導。
type Option func(*config)

type config struct {
	targetSum      *float64
	targetMaxValue *float64
	targetMaxRel   *float64
	maxValue       *float64
	tol            float64
	variant        warp.Variant
	solver         rootfind.Solver
	log            *slog.Logger
}

func newConfig(opts []Option) *config {
	c := &config{
		tol:     DefaultTol,
		variant: warp.Exp,
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	if c.solver == nil {
		c.solver = alphaSolver(c.tol)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// TargetSum 結果的總和；未給定時沿用輸入總和。
func TargetSum(v float64) Option {
	return func(c *config) { c.targetSum = &v }
}

// TargetMaxValue 結果的理論最大值；未給定時沿用輸入的理論最大值（MaxValue）。
func TargetMaxValue(v float64) Option {
	return func(c *config) { c.targetMaxValue = &v }
}

// TargetMaxRel 結果的「實際最大值 / 理論最大值」比例；未給定時沿用輸入的比例。
func TargetMaxRel(v float64) Option {
	return func(c *config) { c.targetMaxRel = &v }
}

// MaxValue 輸入的理論最大值；實際最大值可以比它小。未給定時使用輸入的實際最大值。
func MaxValue(v float64) Option {
	return func(c *config) { c.maxValue = &v }
}

// Tol 容許誤差，必須在 (0,1)。
func Tol(v float64) Option {
	return func(c *config) { c.tol = v }
}

// WithVariant 選擇 warp 家族（預設 warp.Exp）
func WithVariant(v warp.Variant) Option {
	return func(c *config) { c.variant = v }
}

// WithSolver 注入求根器（預設 Brent）
func WithSolver(s rootfind.Solver) Option {
	return func(c *config) { c.solver = s }
}

// WithLogger 注入 logger，用來輸出精度警告
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// alphaSolver 預設求根器：以 Brent 法、XTol 綁定 tol，讓解出的 alpha 殘差遠小於 tol。
func alphaSolver(tol float64) rootfind.Solver {
	s := rootfind.NewBrent()
	s.Settings.XTol = tol * 1e-3
	s.Settings.MaxIter = 200
	return s
}

func (c *config) valid() error {
	if math.IsNaN(c.tol) || c.tol <= 0 || c.tol >= 1 {
		return errs.Invalidf("tol must be in (0, 1): %g", c.tol)
	}
	if !c.variant.Valid() {
		return errs.Invalidf("unknown warp variant: %d", uint8(c.variant))
	}
	if c.targetSum != nil {
		if !finite(*c.targetSum) || *c.targetSum < 0 {
			return errs.Invalidf("target sum must be a finite non-negative number: %g", *c.targetSum)
		}
	}
	for _, p := range []struct {
		name string
		v    *float64
	}{
		{"target max value", c.targetMaxValue},
		{"target max rel", c.targetMaxRel},
		{"max value", c.maxValue},
	} {
		if p.v != nil && (!finite(*p.v) || *p.v <= 0) {
			return errs.Invalidf("%s must be a finite positive number: %g", p.name, *p.v)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
