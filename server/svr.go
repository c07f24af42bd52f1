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

// Package server 組裝 HTTP 服務：路由、middleware 與生命週期。
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/server/api"
	"github.com/zintix-labs/profilescale/server/app"
	"github.com/zintix-labs/profilescale/server/netsvr"
	"github.com/zintix-labs/profilescale/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
//  1. 驗證 SvrCfg（必要依賴：Engine；logger 可自動補上）。
//  2. 建立 HTTP server（netsvr.ChiAdapter）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 阻塞在 app.Run(ctx) 直到收到訊號或 ctx 結束，回傳停止原因。
//
// Run 不讀任何檔案或環境變數；所有依賴都應透過 SvrCfg 注入。
func Run(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 外層傳入的 logger 可能不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(ctx, sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但允許呼叫端注入自訂的 NetSvr
// （例如自訂 timeout 的 ChiAdapter 或其他框架的 adapter）。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}

	api.RegisterRoutes(svr, sCfg)

	a := app.NewWith(sCfg.Log, svr)
	sCfg.Log.Info("[profilescale] listening", slog.String("addr", svr.Address()))
	if err := a.Run(ctx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
