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

package api_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/profilescale"
	"github.com/zintix-labs/profilescale/demo/demo_configs"
	"github.com/zintix-labs/profilescale/server/api"
	"github.com/zintix-labs/profilescale/server/httperr"
	"github.com/zintix-labs/profilescale/server/netsvr"
	"github.com/zintix-labs/profilescale/server/svrcfg"
	"github.com/zintix-labs/profilescale/stats"
)

func newServer(t *testing.T) *netsvr.ChiAdapter {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	eng, err := profilescale.New(log, demo_configs.FS)
	if err != nil {
		t.Fatal(err)
	}
	sCfg := &svrcfg.SvrCfg{Log: log, Engine: eng, MaxValues: 64, MaxJobs: 4}
	if err := sCfg.Valid(); err != nil {
		t.Fatal(err)
	}
	svr := netsvr.NewChiServer(sCfg.Addr)
	api.RegisterRoutes(svr, sCfg)
	return svr
}

func do(svr http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) httperr.Body {
	t.Helper()
	var b httperr.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("error body: %v (%s)", err, rec.Body.String())
	}
	return b
}

func TestHealthz(t *testing.T) {
	rec := do(newServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRescaleEndpoint(t *testing.T) {
	svr := newServer(t)
	rec := do(svr, http.MethodPost, "/v1/rescale", `{"name":"web","values":[0,10,2,3,5],"target_sum":30,"target_max_value":12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var rep stats.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Name != "web" || len(rep.Values) != 5 || !rep.RankPreserved {
		t.Fatalf("report got %+v", rep)
	}
	if rep.Targets.Max != 12 || rep.Targets.Sum != 30 {
		t.Fatalf("targets got %+v", rep.Targets)
	}
}

func TestRescaleEndpointErrors(t *testing.T) {
	svr := newServer(t)
	cases := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"unachievable", `{"values":[0,10,2,3,5],"target_sum":50}`, http.StatusUnprocessableEntity, "unachievable_target"},
		{"negative", `{"values":[1,-1]}`, http.StatusBadRequest, "invalid_input"},
		{"broken-json", `{"values":`, http.StatusBadRequest, "invalid_input"},
		{"unknown-field", `{"values":[1],"foo":1}`, http.StatusBadRequest, "invalid_input"},
		{"bad-variant", `{"values":[1,2],"variant":"cubic"}`, http.StatusBadRequest, "invalid_input"},
		{"too-long", `{"values":[` + strings.Repeat("1,", 64) + `1]}`, http.StatusBadRequest, "invalid_input"},
	}
	for _, c := range cases {
		rec := do(svr, http.MethodPost, "/v1/rescale", c.body)
		if rec.Code != c.code {
			t.Fatalf("%s: status got %d want %d (%s)", c.name, rec.Code, c.code, rec.Body.String())
		}
		if b := decodeErr(t, rec); b.Kind != c.kind {
			t.Fatalf("%s: kind got %q want %q", c.name, b.Kind, c.kind)
		}
	}
}

func TestBatchEndpoint(t *testing.T) {
	svr := newServer(t)
	body := `{"workers":2,"with_values":true,"jobs":[
		{"name":"a","values":[0,10,2,3,5],"target_sum":30},
		{"name":"b","values":[0,10,2,3,5],"target_sum":99},
		{"values":[1,2,4],"variant":"pow","target_sum":5}
	]}`
	rec := do(svr, http.MethodPost, "/v1/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []struct {
			ID     string        `json:"id"`
			Report *stats.Report `json:"report"`
			Error  *httperr.Body `json:"error"`
		} `json:"results"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 || resp.Failed != 1 {
		t.Fatalf("batch got %d results, %d failed", len(resp.Results), resp.Failed)
	}
	if r := resp.Results[0]; r.ID != "a" || r.Report == nil || len(r.Report.Values) != 5 {
		t.Fatalf("result a got %+v", r)
	}
	if r := resp.Results[1]; r.Error == nil || r.Error.Kind != "unachievable_target" {
		t.Fatalf("result b got %+v", r)
	}
	if r := resp.Results[2]; r.ID == "" || r.Report == nil || r.Report.Variant != "pow" {
		t.Fatalf("anonymous result got %+v", r)
	}
}

func TestBatchEndpointLimits(t *testing.T) {
	svr := newServer(t)
	job := `{"values":[1,2]}`
	many := `{"jobs":[` + strings.Repeat(job+",", 4) + job + `]}`
	cases := map[string]string{
		"empty":    `{"jobs":[]}`,
		"too-many": many,
		"too-long": `{"jobs":[{"values":[` + strings.Repeat("1,", 64) + `1]}]}`,
	}
	for name, body := range cases {
		rec := do(svr, http.MethodPost, "/v1/batch", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status got %d (%s)", name, rec.Code, rec.Body.String())
		}
	}
}

func TestJobsEndpoints(t *testing.T) {
	svr := newServer(t)
	rec := do(svr, http.MethodGet, "/v1/jobs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var list struct {
		Jobs []struct {
			Name string `json:"name"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, j := range list.Jobs {
		if j.Name == "sum-near-upper" {
			found = true
		}
	}
	if !found {
		t.Fatalf("demo job missing from %s", rec.Body.String())
	}

	rec = do(svr, http.MethodGet, "/v1/jobs/sum-near-upper?values=false", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("run job status %d: %s", rec.Code, rec.Body.String())
	}
	var rep stats.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Name != "sum-near-upper" || rep.Values != nil || rep.Targets.Sum != 38 {
		t.Fatalf("report got %+v", rep)
	}

	rec = do(svr, http.MethodGet, "/v1/jobs/nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown job status %d", rec.Code)
	}
}

func TestCompressedResponse(t *testing.T) {
	svr := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/daily-load-peaky", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("want gzip 200, got %d %q", rec.Code, rec.Header().Get("Content-Encoding"))
	}
}
