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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤類別（與 ErrLevel 正交），描述「哪一種」失敗，讓呼叫端可以用 IsKind 分流。
type Kind uint8

const (
	KindUnknown Kind = iota
	// InvalidInput 輸入本身不合法（空陣列、負值、未知 variant、tol 越界…），計算前即拒絕。
	InvalidInput
	// UnachievableTarget 目標總和超出正規化後可達的範圍。
	UnachievableTarget
	// SolverNonConvergence 求根器找不到變號或超過迭代上限。
	SolverNonConvergence
	// PrecisionWarning 結果總和與目標差距略大於 tol，結果仍然回傳。
	PrecisionWarning
	// PostconditionViolation 演算法自身的不變量被破壞，代表 bug。
	PostconditionViolation
)

var kindMap = map[Kind]string{
	KindUnknown:            "unknown",
	InvalidInput:           "invalid_input",
	UnachievableTarget:     "unachievable_target",
	SolverNonConvergence:   "solver_non_convergence",
	PrecisionWarning:       "precision_warning",
	PostconditionViolation: "postcondition_violation",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return "unknown"
}

// kindLevel 每個 Kind 的預設嚴重度
var kindLevel = map[Kind]ErrLevel{
	KindUnknown:            Fatal,
	InvalidInput:           Warn,
	UnachievableTarget:     Warn,
	SolverNonConvergence:   Fatal,
	PrecisionWarning:       Log,
	PostconditionViolation: Fatal,
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示錯誤類別。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s", ErrLv(e.ErrLv))
	if e.Kind != KindUnknown {
		base += " kind=" + e.Kind.String()
	}
	base += " " + e.Message
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewKind 以 Kind 的預設嚴重度建立錯誤。
func NewKind(kind Kind, msg string) *E {
	return &E{Message: msg, ErrLv: kindLevel[kind], Kind: kind}
}

// Kindf 與 NewKind 相同，但支援格式化字串。
func Kindf(kind Kind, format string, a ...any) *E {
	return NewKind(kind, fmt.Sprintf(format, a...))
}

func Invalidf(format string, a ...any) *E {
	return Kindf(InvalidInput, format, a...)
}

func Unachievablef(format string, a ...any) *E {
	return Kindf(UnachievableTarget, format, a...)
}

func NonConvergencef(format string, a ...any) *E {
	return Kindf(SolverNonConvergence, format, a...)
}

func Precisionf(format string, a ...any) *E {
	return Kindf(PrecisionWarning, format, a...)
}

func Postconditionf(format string, a ...any) *E {
	return Kindf(PostconditionViolation, format, a...)
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與類別）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / NewKind 並自行指定等級），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindUnknown
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，規則同 Wrap。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsKind 回報 err 鏈上是否有指定 Kind 的 *E。
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *E
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf 回傳最外層 *E 的 Kind；非 *E 回傳 KindUnknown。
func KindOf(err error) Kind {
	if e, ok := AsErr(err); ok {
		return e.Kind
	}
	return KindUnknown
}
