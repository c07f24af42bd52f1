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

package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/zintix-labs/profilescale"
	"github.com/zintix-labs/profilescale/demo/demo_configs"
	"github.com/zintix-labs/profilescale/server"
	"github.com/zintix-labs/profilescale/server/logger"
	"github.com/zintix-labs/profilescale/server/svrcfg"
)

// HTTP 服務入口。預設掛上 demo job 目錄；-jobs 可另外指定一個平坦的 job 目錄。
func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = server.Run(context.Background(), sCfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr       string
	LogMode    string
	JobsDir    string
	NoDemo     bool
	Origins    string
	MaxWorkers int
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", svrcfg.DefaultAddr, "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.JobsDir, "jobs", "", "directory of job files (flat)")
	flag.BoolVar(&cfg.NoDemo, "no-demo", false, "do not mount the embedded demo jobs")
	flag.StringVar(&cfg.Origins, "origins", "", "comma separated CORS origins")
	flag.IntVar(&cfg.MaxWorkers, "workers", 8, "max workers per batch request")

	flag.Parse()

	log, ah := logger.NewAsync(4096, logger.ParseMode(cfg.LogMode))

	var srcs []fs.FS
	if !cfg.NoDemo {
		srcs = append(srcs, demo_configs.FS)
	}
	if cfg.JobsDir != "" {
		srcs = append(srcs, os.DirFS(cfg.JobsDir))
	}
	eng, err := profilescale.New(log, srcs...)
	if err != nil {
		ah.Close()
		return nil, nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:            log,
		Engine:         eng,
		Addr:           cfg.Addr,
		MaxWorkers:     cfg.MaxWorkers,
		AllowedOrigins: splitOrigins(cfg.Origins),
	}
	return sCfg, ah.Close, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
