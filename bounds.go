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

import "fmt"

// Range 是正規化 profile 在固定最大值 1 之下可達到的總和範圍。
//
// 0 永遠停在 0、1 永遠停在 1，只有介於兩者之間的 Var 個值可以移動，
// 並且與兩端保持 tol 的距離：
//
//	Lo = Ones + tol*Var
//	Hi = Ones + (1-tol)*Var
type Range struct {
	Zeros int     `json:"zeros" yaml:"zeros"`
	Ones  int     `json:"ones" yaml:"ones"`
	Var   int     `json:"var" yaml:"var"`
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
}

// Bounds 計算 valuesNorm 的可達總和範圍
func Bounds(valuesNorm []float64, tol float64) Range {
	r := Range{}
	for _, x := range valuesNorm {
		switch x {
		case 0:
			r.Zeros++
		case 1:
			r.Ones++
		}
	}
	r.Var = len(valuesNorm) - r.Zeros - r.Ones
	r.Lo = float64(r.Ones) + tol*float64(r.Var)
	r.Hi = float64(r.Ones) + (1-tol)*float64(r.Var)
	return r
}

// Contains 回報 target 是否落在 [Lo, Hi]
func (r Range) Contains(target float64) bool {
	return r.Lo >= 0 && target >= r.Lo && target <= r.Hi
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g] (zeros=%d ones=%d var=%d)", r.Lo, r.Hi, r.Zeros, r.Ones, r.Var)
}
