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

package stats

import "sort"

// RankPreserved 檢查 out 是否保持 in 的排序：
// in[i] < in[j] 時 out[i] <= out[j]，且 in 相等的元素在 out 也相等。
func RankPreserved(in, out []float64) bool {
	if len(in) != len(out) {
		return false
	}
	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return in[idx[a]] < in[idx[b]] })
	for k := 1; k < len(idx); k++ {
		a, b := idx[k-1], idx[k]
		if in[a] == in[b] {
			if out[a] != out[b] {
				return false
			}
			continue
		}
		if out[a] > out[b] {
			return false
		}
	}
	return true
}

// Ranks 回傳每個元素的升冪排名（從 1 開始，相同值取相同排名）
func Ranks(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	ranks := make([]int, len(values))
	for k, i := range idx {
		if k > 0 && values[idx[k-1]] == values[i] {
			ranks[i] = ranks[idx[k-1]]
			continue
		}
		ranks[i] = k + 1
	}
	return ranks
}
