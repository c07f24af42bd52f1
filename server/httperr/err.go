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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/profilescale/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel         → 504/408
//   - errs.UnachievableTarget    → 422（請求合法但目標不可達）
//   - 其他 errs.Warn             → 400（請求/參數問題）
//   - errs.Fatal                 → 500（求根不收斂、內部不變量被破壞）
//
// 本函數屬於 HTTP 邊界層，因此放在 server/*，核心 errs 不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	e, ok := errs.AsErr(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if e.Kind == errs.UnachievableTarget {
		return http.StatusUnprocessableEntity
	}
	switch e.ErrLv {
	case errs.Warn:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Body 錯誤回應格式
type Body struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Errs 寫回 JSON 錯誤
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

// Log 只記錄伺服器端該關心的錯誤（逾時類 warn、5xx error），4xx 由 access log 涵蓋。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout {
		log.Warn(msg, slog.Any("err", err))
	} else if status >= 500 && status < 600 {
		log.Error(msg, slog.Any("err", err))
	}
}
