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

package api

import (
	"net/http"

	v1 "github.com/zintix-labs/profilescale/server/api/v1"
	"github.com/zintix-labs/profilescale/server/netsvr"
	"github.com/zintix-labs/profilescale/server/netsvr/middleware"
	"github.com/zintix-labs/profilescale/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg) // 1. 註冊 middleware
	registerHealth(svr)           // 2. 健康檢查
	registerV1API(svr, sCfg)      // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	if len(sCfg.AllowedOrigins) > 0 {
		svr.Use(middleware.CORS(sCfg.AllowedOrigins))
	}
	svr.Use(middleware.Compression)
}

func registerHealth(svr netsvr.NetRouter) {
	svr.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	h := v1.NewRescaleHandler(sCfg)
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Post("/rescale", h.Rescale)
		vOne.Post("/batch", h.Batch)
		vOne.Get("/jobs", h.Jobs)
		vOne.Get("/jobs/{name}", h.RunJob)
	})
}
