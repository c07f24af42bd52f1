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
	"github.com/zintix-labs/profilescale/sdk/warp"
	"gonum.org/v1/gonum/floats"
)

// BlendResult 線性修正後的正規化結果
type BlendResult struct {
	Values   []float64
	Beta     float64
	Warnings []error
}

// Blend 以線性插值修正 warp 後的總和誤差：
//
//	result = valuesNorm*(1-beta) + warped*beta
//
// beta 是 warped 的權重，兩邊總和已知，所以 beta 可以直接解出，使 result 總和恰好等於 targetSum。
// beta 會被夾在 [0,1]，確保結果是兩個單調序列的凸組合（排序不會交錯）；
// 超出 [-tol, 1+tol] 時額外附上 PrecisionWarning。
// 原本為 0 或 1 的元素原樣保留，最大值恆為 1。
func Blend(valuesNorm []float64, targetSum float64, alpha float64, tol float64, variant warp.Variant) *BlendResult {
	br := &BlendResult{Values: make([]float64, len(valuesNorm))}
	warped := variant.Apply(valuesNorm, alpha)
	valuesSum := floats.Sum(valuesNorm)
	warpedSum := floats.Sum(warped)

	if math.Abs(warpedSum-valuesSum) > tol {
		beta := (valuesSum - targetSum) / (valuesSum - warpedSum)
		if beta < -tol || beta > 1+tol {
			br.Warnings = append(br.Warnings, errs.Precisionf("blend weight %g outside [0,1], clamped", beta))
		}
		beta = clamp01(beta)
		br.Beta = beta
		for i, x := range valuesNorm {
			switch x {
			case 0, 1:
				br.Values[i] = x
			default:
				br.Values[i] = x*(1-beta) + warped[i]*beta
			}
		}
	} else {
		copy(br.Values, valuesNorm)
	}

	// 修正捨入誤差
	for i, y := range br.Values {
		br.Values[i] = clamp01(y)
	}

	if got := floats.Sum(br.Values); math.Abs(got-targetSum) > tol {
		br.Warnings = append(br.Warnings, errs.Precisionf("resulting sum slightly off target: got %.17g want %.17g", got, targetSum))
	}
	return br
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
