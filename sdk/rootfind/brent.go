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

package rootfind

import (
	"math"

	"github.com/zintix-labs/profilescale/errs"
)

// Brent 以 Brent 法求根：反二次插值 / 割線，步長不理想時退回二分。
type Brent struct {
	Settings Settings
}

// NewBrent 使用 DefaultSettings 建立 Brent 求根器
func NewBrent() *Brent {
	return &Brent{Settings: DefaultSettings}
}

func (b *Brent) Solve(f Func, lo, hi float64) (Result, error) {
	s := b.Settings.norm()
	fpre, fcur, res, done, err := checkBracket(f, lo, hi)
	if err != nil || done {
		return res, err
	}

	xpre, xcur := lo, hi
	var xblk, fblk, spre, scur float64

	for i := 1; i <= s.MaxIter; i++ {
		res.Iterations = i
		// 保持 [xcur, xblk] 為變號區間
		if math.Signbit(fpre) != math.Signbit(fcur) {
			xblk, fblk = xpre, fpre
			spre = xcur - xpre
			scur = spre
		}
		// xcur 永遠是目前最好的估計
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (s.XTol + s.RTol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			res.Root, res.Converged = xcur, true
			return res, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// 割線
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// 反二次插值
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre, scur = scur, stry
			} else {
				spre, scur = sbis, sbis
			}
		} else {
			spre, scur = sbis, sbis
		}

		xpre, fpre = xcur, fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}
		fcur = f(xcur)
		res.FuncCalls++
		if math.IsNaN(fcur) {
			res.Root = xcur
			return res, errs.NonConvergencef("rootfind: f is NaN at x=%g", xcur)
		}
	}
	res.Root = xcur
	return res, errs.NonConvergencef("rootfind: brent did not converge after %d iterations (x=%g)", s.MaxIter, xcur)
}
