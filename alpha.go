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
	"math"

	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/sdk/rootfind"
	"github.com/zintix-labs/profilescale/sdk/warp"
	"gonum.org/v1/gonum/floats"
)

// FindAlpha 找出形狀參數 alpha，使 sum(warp(valuesNorm, alpha)) == targetSum。
//
// 若輸入總和已在 tol 之內就直接回傳 0（identity），不進求根器。
// 求根器不收斂或區間兩端沒有變號時回傳 errs.SolverNonConvergence，不回傳近似值。
func FindAlpha(valuesNorm []float64, targetSum float64, tol float64, variant warp.Variant, solver rootfind.Solver) (float64, error) {
	if math.Abs(floats.Sum(valuesNorm)-targetSum) < tol {
		return 0, nil
	}
	if solver == nil {
		solver = alphaSolver(tol)
	}

	buf := make([]float64, len(valuesNorm))
	f := func(alpha float64) float64 {
		variant.ApplyTo(buf, valuesNorm, alpha)
		return floats.Sum(buf) - targetSum
	}

	lo, hi := variant.Bracket(tol)
	res, err := solver.Solve(f, lo, hi)
	if err != nil {
		e := errs.Wrap(err, "find alpha: "+variant.String())
		if e.Kind == errs.KindUnknown {
			e.Kind = errs.SolverNonConvergence
		}
		return 0, e
	}
	if !res.Converged {
		return 0, errs.NonConvergencef("find alpha: %s solver did not converge (root=%g, iter=%d)", variant, res.Root, res.Iterations)
	}
	return res.Root, nil
}
