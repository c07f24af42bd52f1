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

package profilescale

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/zintix-labs/profilescale/errs"
	"github.com/zintix-labs/profilescale/spec"
)

const maxWorkers int = 256

// JobResult 批次中單一 Job 的結果；失敗的 Job 只記錄 Err，不影響其他 Job。
type JobResult struct {
	ID     string        `json:"id"`
	Job    *spec.Job     `json:"-"`
	Result *Result       `json:"result,omitempty"`
	Err    error         `json:"-"`
	Used   time.Duration `json:"-"`
}

// Batch 以固定數量的 worker 並行執行多個 Job，回傳與輸入同順序的結果與總用時。
//
// ctx 取消後，尚未開始的 Job 會以 ctx.Err() 作為錯誤結束；已開始的 Job 會跑完（單次計算不可中斷）。
func (e *Engine) Batch(ctx context.Context, jobs []*spec.Job, workers int, showpb bool) ([]*JobResult, time.Duration, error) {
	if len(jobs) == 0 {
		return nil, 0, errs.Invalidf("batch: no jobs")
	}
	if workers < 1 {
		return nil, 0, errs.Invalidf("batch: workers must > 0")
	}
	workers = min(workers, maxWorkers, len(jobs))

	// Init 會修改 Job，先在這裡循序做完，worker 只讀
	out := make([]*JobResult, len(jobs))
	for i, j := range jobs {
		r := &JobResult{Job: j}
		if err := j.Init(); err != nil {
			r.Err = err
		} else {
			r.ID = j.Name
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		out[i] = r
	}

	// 緩衝 channel 讓 worker 依序取件
	queue := make(chan *JobResult, len(out))

	bar := pb.New(len(out))
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for range workers {
		go e.work(ctx, wg, queue, bar)
	}
	for _, r := range out {
		queue <- r
	}
	close(queue)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	return out, used, ctx.Err()
}

func (e *Engine) work(ctx context.Context, wg *sync.WaitGroup, queue <-chan *JobResult, bar *pb.ProgressBar) {
	defer wg.Done()
	for r := range queue {
		if r.Err != nil {
			bar.Increment()
			continue
		}
		if err := ctx.Err(); err != nil {
			r.Err = err
			bar.Increment()
			continue
		}
		start := time.Now()
		r.Result, r.Err = e.run(r.Job)
		r.Used = time.Since(start)
		bar.Increment()
	}
}
