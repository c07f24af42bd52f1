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

// Package warp 提供把 [0,1] 單調映射回 [0,1] 的變形函數（warp）。
//
// 所有 warp 都固定 0→0、1→1，並由單一形狀參數 alpha 控制彎曲程度。
// 這是保證「輸出最大值恰好等於目標最大值」的機制：不論 alpha 為何，正規化後的 1 永遠映射到 1。
package warp

import (
	"math"
	"strings"

	"github.com/zintix-labs/profilescale/errs"
)

// Variant 是 warp 家族的 tagged enum，只有 Exp 與 Pow 兩種。
type Variant uint8

const (
	Exp Variant = iota
	Pow
)

// ExpBound 是 exp 家族搜尋區間的半寬：ln(1e64)，讓 e^alpha 仍可表示且 warp 已接近飽和。
var ExpBound = math.Log(1e64)

var variantNames = map[Variant]string{
	Exp: "exp",
	Pow: "pow",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return "unknown"
}

// Valid 回報是否為已定義的 variant
func (v Variant) Valid() bool {
	_, ok := variantNames[v]
	return ok
}

// ParseVariant 把名稱轉成 Variant；空字串視為預設 Exp，其他未知名稱一律回報錯誤。
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exp":
		return Exp, nil
	case "pow":
		return Pow, nil
	default:
		return 0, errs.Invalidf("unknown warp variant: %q (want exp|pow)", name)
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, errs.Invalidf("unknown warp variant: %d", uint8(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	p, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Apply 逐元素套用 warp，回傳新的 slice，不修改輸入。
// alpha == 0 對兩個家族都代表 identity。
func (v Variant) Apply(values []float64, alpha float64) []float64 {
	dst := make([]float64, len(values))
	v.ApplyTo(dst, values, alpha)
	return dst
}

// ApplyTo 與 Apply 相同，但寫入呼叫端提供的 dst（len(dst) 必須 >= len(values)）。
func (v Variant) ApplyTo(dst, values []float64, alpha float64) {
	if alpha == 0 {
		copy(dst, values)
		return
	}
	switch v {
	case Pow:
		powTo(dst, values, alpha)
	default:
		expTo(dst, values, alpha)
	}
}

// Bracket 回傳求根時使用的 alpha 區間。
//   - exp: [-ln(1e64), ln(1e64)]
//   - pow: [tol, 1/tol]，alpha 必須保持正值才會單調。
func (v Variant) Bracket(tol float64) (lo, hi float64) {
	switch v {
	case Pow:
		return tol, 1 / tol
	default:
		return -ExpBound, ExpBound
	}
}

// (base^x - 1) / (base - 1)，base = e^alpha。
// 以 Expm1 計算，alpha 很小時不會因為相減而失去精度。
func expTo(dst, values []float64, alpha float64) {
	den := math.Expm1(alpha)
	for i, x := range values {
		switch x {
		case 0:
			dst[i] = 0
		case 1:
			dst[i] = 1
		default:
			dst[i] = math.Expm1(alpha*x) / den
		}
	}
}

// x^alpha；0 必須明確映射到 0，不依賴 math.Pow 的邊界行為。
func powTo(dst, values []float64, alpha float64) {
	for i, x := range values {
		switch x {
		case 0:
			dst[i] = 0
		case 1:
			dst[i] = 1
		default:
			dst[i] = math.Pow(x, alpha)
		}
	}
}
