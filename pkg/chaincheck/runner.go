// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chaincheck

import (
	"context"
	"sync"
	"time"

	"github.com/axiomhq/hyperloglog"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/logutil"
)

// runRound is replaced in tests.
var runRound = checkRound

type Runner struct {
	cfg Config
}

func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg}, nil
}

// Run executes all rounds and blocks until they finish. The returned
// error is the first round failure, or the context error when the run
// was cancelled. The report is filled in either way.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report Report
		first  error
		sketch = hyperloglog.New()
	)

	pool, err := ants.NewPoolWithFunc(r.cfg.Workers, func(arg interface{}) {
		defer wg.Done()
		res := r.safeRound(ctx, arg.(int))

		mu.Lock()
		defer mu.Unlock()
		report.Rounds++
		report.Ops += res.ops
		report.Resizes += res.resizes
		if res.maxCapacity > report.MaxCapacity {
			report.MaxCapacity = res.maxCapacity
		}
		if res.sketch != nil {
			if err := sketch.Merge(res.sketch); err != nil {
				logutil.Warn("chaincheck sketch merge failed", zap.Int("round", res.round), zap.Error(err))
			}
		}
		if res.err != nil && res.err != ctx.Err() {
			report.Failures = append(report.Failures, res.err)
			if first == nil {
				first = res.err
			}
		}
	}, ants.WithExpiryDuration(100*time.Millisecond))
	if err != nil {
		return report, moerr.ConvertGoError(ctx, err)
	}
	defer pool.Release()

	start := time.Now()
	for i := 0; i < r.cfg.Rounds; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			mu.Lock()
			if first == nil {
				first = moerr.ConvertGoError(ctx, err)
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	report.DistinctKeys = sketch.Estimate()
	logutil.Info("chaincheck finished",
		zap.Int("rounds", report.Rounds),
		zap.Int("ops", report.Ops),
		zap.Int("resizes", report.Resizes),
		zap.Int("max-capacity", report.MaxCapacity),
		zap.Uint64("distinct-keys", report.DistinctKeys),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("elapsed", time.Since(start)))

	if first != nil {
		return report, first
	}
	return report, ctx.Err()
}

func (r *Runner) safeRound(ctx context.Context, round int) (res roundResult) {
	defer func() {
		if e := recover(); e != nil {
			res = roundResult{round: round, err: moerr.ConvertPanicError(ctx, e)}
		}
	}()
	return runRound(ctx, r.cfg, round)
}
