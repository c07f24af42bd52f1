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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/profilescale"
	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/server/logger"
)

const (
	DefaultAddr       string = ":5808"
	defaultMaxWorkers int    = 8
	defaultMaxJobs    int    = 10_000
	defaultMaxValues  int    = 1_000_000
)

type SvrCfg struct {
	Log    *slog.Logger
	Engine *profilescale.Engine
	Addr   string
	// MaxWorkers 單一 batch 請求可用的 worker 上限
	MaxWorkers int
	// MaxJobs 單一 batch 請求的 Job 數上限
	MaxJobs int
	// MaxValues 單一 profile 長度上限
	MaxValues int
	// AllowedOrigins CORS 白名單；空值代表不掛 CORS
	AllowedOrigins []string
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is not ready")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Engine == nil {
		return errs.NewFatal("engine is required")
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	// 資源管理：1 <= MaxWorkers <= 64
	if sc.MaxWorkers < 1 {
		sc.MaxWorkers = defaultMaxWorkers
	}
	sc.MaxWorkers = min(64, sc.MaxWorkers)
	if sc.MaxJobs < 1 {
		sc.MaxJobs = defaultMaxJobs
	}
	if sc.MaxValues < 1 {
		sc.MaxValues = defaultMaxValues
	}
	return nil
}
