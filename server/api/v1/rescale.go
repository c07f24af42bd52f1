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

package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/profilescale"
	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/server/httperr"
	"github.com/zintix-labs/profilescale/server/netsvr"
	"github.com/zintix-labs/profilescale/server/svrcfg"
	"github.com/zintix-labs/profilescale/spec"
	"github.com/zintix-labs/profilescale/stats"
)

// maxBody 請求 body 上限（32 MiB）
const maxBody int64 = 32 << 20

type RescaleHandler struct {
	engine     *profilescale.Engine
	log        *slog.Logger
	maxWorkers int
	maxJobs    int
	maxValues  int
}

func NewRescaleHandler(sCfg *svrcfg.SvrCfg) *RescaleHandler {
	return &RescaleHandler{
		engine:     sCfg.Engine,
		log:        sCfg.Log,
		maxWorkers: sCfg.MaxWorkers,
		maxJobs:    sCfg.MaxJobs,
		maxValues:  sCfg.MaxValues,
	}
}

// Rescale POST /v1/rescale
//
// body 為單一 Job（JSON），回傳 stats.Report（含完整輸出 profile）。
func (h *RescaleHandler) Rescale(w http.ResponseWriter, r *http.Request) {
	job := new(spec.Job)
	if err := decode(w, r, job); err != nil {
		httperr.Errs(w, err)
		return
	}
	if len(job.Values) > h.maxValues {
		httperr.Errs(w, errs.Invalidf("values too long: %d > %d", len(job.Values), h.maxValues))
		return
	}
	start := time.Now()
	res, err := h.engine.Run(job)
	if err != nil {
		httperr.Log(h.log, "rescale failed", err)
		httperr.Errs(w, err)
		return
	}
	rep := stats.NewReport(job.Name, job.Values, res, true)
	rep.SetUsed(time.Since(start))
	writeJSON(w, rep)
}

// Batch POST /v1/batch
//
// body: {"workers": 4, "jobs": [...]}。單一 Job 失敗不影響其他 Job，錯誤寫在該筆結果裡。
func (h *RescaleHandler) Batch(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type batchRequest struct {
		Workers int         `json:"workers"`
		Values  bool        `json:"with_values"`
		Jobs    []*spec.Job `json:"jobs"`
	}
	type batchItem struct {
		ID     string        `json:"id"`
		Report *stats.Report `json:"report,omitempty"`
		Error  *httperr.Body `json:"error,omitempty"`
	}
	type batchResponse struct {
		Results []batchItem `json:"results"`
		Failed  int         `json:"failed"`
		UsedMs  int64       `json:"used_ms"`
	}

	req := new(batchRequest)
	if err := decode(w, r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	if len(req.Jobs) == 0 {
		httperr.Errs(w, errs.Invalidf("jobs is required"))
		return
	}
	if len(req.Jobs) > h.maxJobs {
		httperr.Errs(w, errs.Invalidf("too many jobs: %d > %d", len(req.Jobs), h.maxJobs))
		return
	}
	for i, j := range req.Jobs {
		if j != nil && len(j.Values) > h.maxValues {
			httperr.Errs(w, errs.Invalidf("job %d: values too long: %d > %d", i, len(j.Values), h.maxValues))
			return
		}
	}
	workers := min(max(1, req.Workers), h.maxWorkers)

	results, used, err := h.engine.Batch(r.Context(), req.Jobs, workers, false)
	if err != nil {
		httperr.Log(h.log, "batch aborted", err)
		httperr.Errs(w, err)
		return
	}
	resp := batchResponse{Results: make([]batchItem, len(results)), UsedMs: used.Milliseconds()}
	for i, jr := range results {
		item := batchItem{ID: jr.ID}
		if jr.Err != nil {
			resp.Failed++
			item.Error = &httperr.Body{Error: jr.Err.Error(), Kind: errs.KindOf(jr.Err).String()}
		} else {
			item.Report = stats.NewReport(jr.Job.Name, jr.Job.Values, jr.Result, req.Values)
			item.Report.SetUsed(jr.Used)
		}
		resp.Results[i] = item
	}
	writeJSON(w, resp)
}

// Jobs GET /v1/jobs
func (h *RescaleHandler) Jobs(w http.ResponseWriter, _ *http.Request) {
	type jobsResponse struct {
		Jobs any `json:"jobs"`
	}
	entries := h.engine.Entries()
	if entries == nil {
		writeJSON(w, jobsResponse{Jobs: []struct{}{}})
		return
	}
	writeJSON(w, jobsResponse{Jobs: entries})
}

// RunJob GET /v1/jobs/{name}
func (h *RescaleHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := netsvr.URLParam(r, "name")
	if name == "" {
		httperr.Errs(w, errs.Invalidf("job name is required"))
		return
	}
	start := time.Now()
	job, res, err := h.engine.RunByName(name)
	if err != nil {
		httperr.Log(h.log, "run job failed", err)
		httperr.Errs(w, err)
		return
	}
	rep := stats.NewReport(job.Name, job.Values, res, r.URL.Query().Get("values") != "false")
	rep.SetUsed(time.Since(start))
	writeJSON(w, rep)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Invalidf("invalid json: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
