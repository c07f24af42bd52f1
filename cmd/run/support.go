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
	"encoding/json"
	"flag"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/profilescale"
	"github.com/zintix-labs/profilescale/demo/demo_configs"
	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/server/logger"
	"github.com/zintix-labs/profilescale/spec"
	"github.com/zintix-labs/profilescale/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	job       string // job 檔路徑（yaml/json）
	name      string // demo 目錄或 job 檔中的 job 名稱
	values    string // 逗號分隔的 profile
	sum       optFloat
	max       optFloat
	maxrel    optFloat
	maxvalue  optFloat
	tol       float64
	variant   string
	all       bool
	workers   int
	out       string
	format    string
	logMode   string
	pprofmode string
}

// optFloat 只有在命令列有給的時候才算數
type optFloat struct{ p *float64 }

func (f *optFloat) String() string {
	if f == nil || f.p == nil {
		return ""
	}
	return strconv.FormatFloat(*f.p, 'g', -1, 64)
}

func (f *optFloat) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	f.p = &v
	return nil
}

func bindVar() {
	flag.StringVar(&cfg.job, "job", "", "job file (.yaml/.yml/.json)")
	flag.StringVar(&cfg.name, "name", "", "job name (demo catalog, or inside -job file)")
	flag.StringVar(&cfg.values, "values", "", "inline profile, e.g. 0,10,2,3,5")
	flag.Var(&cfg.sum, "sum", "target sum")
	flag.Var(&cfg.max, "max", "target max value")
	flag.Var(&cfg.maxrel, "maxrel", "target max as ratio of the theoretical max")
	flag.Var(&cfg.maxvalue, "maxvalue", "theoretical max of the input scale")
	flag.Float64Var(&cfg.tol, "tol", profilescale.DefaultTol, "tolerance in (0,1)")
	flag.StringVar(&cfg.variant, "variant", "exp", "warp family: exp|pow")
	flag.BoolVar(&cfg.all, "all", false, "batch-run every job of the catalog (or of -job)")
	flag.IntVar(&cfg.workers, "workers", 4, "number of workers for -all")
	flag.StringVar(&cfg.out, "out", "", "write results to .json, .yaml or .json.zst")
	flag.StringVar(&cfg.format, "format", "table", "stdout format: table|json|yaml")
	flag.StringVar(&cfg.logMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// execute 解析並分支要執行的工作
func execute() error {
	if err := cfg.valid(); err != nil {
		return err
	}
	log := logger.NewDefaultLogger(logger.ParseMode(cfg.logMode))
	eng, err := profilescale.New(log, demo_configs.FS)
	if err != nil {
		return err
	}
	jobs, err := cfg.jobs(eng)
	if err != nil {
		return err
	}

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	render := stats.RenderByName(cfg.format)

	var reports []*stats.Report
	if len(jobs) == 1 && !cfg.all {
		j := jobs[0]
		p.Printf("%s[JOB:%s] [VALUES:%d]%s\n", green, display(j.Name), len(j.Values), reset)
		res, err := eng.Run(j)
		if err != nil {
			return err
		}
		reports = append(reports, stats.NewReport(j.Name, j.Values, res, true))
	} else {
		p.Printf("%s[WORKERS:%d] [JOBS:%d]%s\n", green, cfg.workers, len(jobs), reset)
		results, used, err := eng.Batch(context.Background(), jobs, cfg.workers, true)
		if err != nil {
			return err
		}
		failed := 0
		for _, jr := range results {
			if jr.Err != nil {
				failed++
				p.Fprintf(os.Stderr, "[JOB:%s] %v\n", jr.ID, jr.Err)
				continue
			}
			rep := stats.NewReport(jr.Job.Name, jr.Job.Values, jr.Result, true)
			rep.SetUsed(jr.Used)
			reports = append(reports, rep)
		}
		p.Printf("done: %d ok, %d failed, used %v\n", len(reports), failed, used)
	}

	for _, r := range reports {
		if err := render.Write(os.Stdout, r); err != nil {
			return err
		}
	}
	if cfg.out != "" {
		return writeOut(cfg.out, reports)
	}
	return nil
}

// jobs 依旗標組出要執行的 Job 清單
func (cfg *config) jobs(eng *profilescale.Engine) ([]*spec.Job, error) {
	switch {
	case cfg.values != "":
		vs, err := parseValues(cfg.values)
		if err != nil {
			return nil, err
		}
		return []*spec.Job{{
			Name:           cfg.name,
			Values:         vs,
			TargetSum:      cfg.sum.p,
			TargetMaxValue: cfg.max.p,
			TargetMaxRel:   cfg.maxrel.p,
			MaxValue:       cfg.maxvalue.p,
			Tol:            cfg.tol,
			Variant:        cfg.variant,
		}}, nil
	case cfg.job != "":
		raw, err := os.ReadFile(cfg.job)
		if err != nil {
			return nil, errs.Wrap(err, "read job file")
		}
		jf, err := spec.GetJobFileByExt(cfg.job, raw)
		if err != nil {
			return nil, err
		}
		if cfg.name == "" {
			return jf.Jobs, nil
		}
		j, ok := jf.Find(cfg.name)
		if !ok {
			return nil, errs.Invalidf("job %q not found in %s", cfg.name, cfg.job)
		}
		return []*spec.Job{j}, nil
	case cfg.all:
		out := make([]*spec.Job, 0)
		for _, ent := range eng.Entries() {
			j, err := eng.Job(ent.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, j)
		}
		return out, nil
	case cfg.name != "":
		j, err := eng.Job(cfg.name)
		if err != nil {
			return nil, err
		}
		return []*spec.Job{j}, nil
	default:
		return nil, errs.Invalidf("nothing to run: use -values, -job, -name or -all")
	}
}

func (cfg *config) valid() error {
	if cfg.workers < 1 {
		return errs.Invalidf("workers must > 0")
	}
	if stats.RenderByName(cfg.format) == nil {
		return errs.Invalidf("unknown format %q", cfg.format)
	}
	if cfg.out != "" && outKind(cfg.out) == "" {
		return errs.Invalidf("unsupported output file %q (want .json, .yaml or .json.zst)", cfg.out)
	}
	return nil
}

func parseValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vs := make([]float64, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errs.Invalidf("values[%d]: %v", i, err)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func outKind(path string) string {
	switch {
	case strings.HasSuffix(path, ".json.zst"):
		return "zst"
	case strings.HasSuffix(path, ".json"):
		return "json"
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return "yaml"
	default:
		return ""
	}
}

// writeOut 把報表寫到檔案；.json.zst 以 zstd 壓縮的 JSON 輸出
func writeOut(path string, reports []*stats.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create output")
	}
	defer f.Close()

	var w io.Writer = f
	switch outKind(path) {
	case "zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return errs.Wrap(err, "zstd writer")
		}
		if err := json.NewEncoder(zw).Encode(reports); err != nil {
			_ = zw.Close()
			return errs.Wrap(err, "encode output")
		}
		return zw.Close()
	case "yaml":
		return stats.WriteYAML(w, &reports)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
}

func display(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
