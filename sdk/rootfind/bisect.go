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

// Bisection 純二分法。慢，但只要求連續與變號，適合作為對照組。
type Bisection struct {
	Settings Settings
}

func NewBisection() *Bisection {
	return &Bisection{Settings: Settings{XTol: DefaultSettings.XTol, MaxIter: 400}}
}

func (b *Bisection) Solve(f Func, lo, hi float64) (Result, error) {
	s := b.Settings.norm()
	flo, _, res, done, err := checkBracket(f, lo, hi)
	if err != nil || done {
		return res, err
	}
	for i := 1; i <= s.MaxIter; i++ {
		res.Iterations = i
		mid := lo + (hi-lo)/2
		if (hi-lo)/2 < (s.XTol+s.RTol*math.Abs(mid))/2 {
			res.Root, res.Converged = mid, true
			return res, nil
		}
		fmid := f(mid)
		res.FuncCalls++
		if math.IsNaN(fmid) {
			res.Root = mid
			return res, errs.NonConvergencef("rootfind: f is NaN at x=%g", mid)
		}
		if fmid == 0 {
			res.Root, res.Converged = mid, true
			return res, nil
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	res.Root = lo + (hi-lo)/2
	return res, errs.NonConvergencef("rootfind: bisection did not converge after %d iterations (x=%g)", s.MaxIter, res.Root)
}
