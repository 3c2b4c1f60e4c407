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
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/RoaringBitmap/roaring"
	"github.com/axiomhq/hyperloglog"
	"go.uber.org/zap"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/container/chainmap"
	"github.com/matrixorigin/chainmap/pkg/logutil"
	"github.com/matrixorigin/chainmap/pkg/logutil/logutil2"
)

type table = chainmap.Map[uint32, uint64]

// checkRound runs one seeded workload. Any divergence from the builtin
// map ends the round with an ErrInternal carrying the seed as detail.
func checkRound(ctx context.Context, cfg Config, round int) (res roundResult) {
	seed := cfg.Seed + int64(round)
	ctx = logutil.WithContextFields(ctx, zap.Int("round", round), zap.Int64("seed", seed))
	res.round = round
	res.sketch = hyperloglog.New()

	m, err := chainmap.NewFromConfig[uint32, uint64](ctx, cfg.Map, chainmap.IntHasher[uint32]())
	if err != nil {
		res.err = err
		return
	}
	ref := make(map[uint32]uint64)
	rng := rand.New(rand.NewSource(seed))
	capacity := m.Capacity()
	res.maxCapacity = capacity

	fail := func(op int, cause error) roundResult {
		res.err = moerr.NewInternalError(ctx, "round %d op %d: %v", round, op, cause).
			WithDetail(fmt.Sprintf("seed %d", seed))
		logutil2.Error(ctx, "chaincheck mismatch", zap.Int("op", op), zap.Error(cause))
		return res
	}

	scanEvery := cfg.Ops / 8
	if scanEvery == 0 {
		scanEvery = 1
	}
	var buf [4]byte
	for op := 0; op < cfg.Ops; op++ {
		key := uint32(rng.Intn(cfg.KeySpace))
		want, present := ref[key]

		switch p := rng.Intn(100); {
		case p < 50:
			val := rng.Uint64()
			prev, replaced, err := m.Put(key, val)
			if err != nil {
				return fail(op, err)
			}
			if replaced != present || prev != want {
				return fail(op, moerr.NewInternalError(ctx,
					"put %d returned (%d, %v), expected (%d, %v)", key, prev, replaced, want, present))
			}
			ref[key] = val
			binary.LittleEndian.PutUint32(buf[:], key)
			res.sketch.Insert(buf[:])
		case p < 70:
			got, ok, err := m.Get(key)
			if err != nil {
				return fail(op, err)
			}
			if ok != present || got != want {
				return fail(op, moerr.NewInternalError(ctx,
					"get %d returned (%d, %v), expected (%d, %v)", key, got, ok, want, present))
			}
		case p < 90:
			got, ok, err := m.Remove(key)
			if err != nil {
				return fail(op, err)
			}
			if ok != present || got != want {
				return fail(op, moerr.NewInternalError(ctx,
					"remove %d returned (%d, %v), expected (%d, %v)", key, got, ok, want, present))
			}
			delete(ref, key)
		default:
			ok, err := m.Contains(key)
			if err != nil {
				return fail(op, err)
			}
			if ok != present {
				return fail(op, moerr.NewInternalError(ctx, "contains %d returned %v", key, ok))
			}
		}
		res.ops++

		if m.Len() != len(ref) {
			return fail(op, moerr.NewInternalError(ctx, "size %d, expected %d", m.Len(), len(ref)))
		}
		if c := m.Capacity(); c != capacity {
			if c < capacity {
				return fail(op, moerr.NewInternalError(ctx, "capacity shrank from %d to %d", capacity, c))
			}
			res.resizes++
			capacity = c
			res.maxCapacity = c
		}
		if (op+1)%scanEvery == 0 {
			if err := ctx.Err(); err != nil {
				res.err = err
				return
			}
			if err := scan(ctx, m, ref); err != nil {
				return fail(op, err)
			}
		}
	}

	if err := scan(ctx, m, ref); err != nil {
		return fail(cfg.Ops, err)
	}
	if err := drain(ctx, m, ref, rng); err != nil {
		return fail(cfg.Ops, err)
	}
	if err := scan(ctx, m, ref); err != nil {
		return fail(cfg.Ops, err)
	}
	logutil2.Debug(ctx, "chaincheck round done",
		zap.Int("ops", res.ops),
		zap.Int("resizes", res.resizes),
		zap.Int("capacity", capacity))
	return res
}

// scan checks that iteration yields every live key exactly once with
// its current value.
func scan(ctx context.Context, m *table, ref map[uint32]uint64) error {
	seen := roaring.New()
	for k, v := range m.All() {
		if seen.Contains(k) {
			return moerr.NewInternalError(ctx, "key %d yielded twice", k)
		}
		seen.Add(k)
		want, ok := ref[k]
		if !ok {
			return moerr.NewInternalError(ctx, "iteration yielded removed key %d", k)
		}
		if v != want {
			return moerr.NewInternalError(ctx, "key %d yielded %d, expected %d", k, v, want)
		}
	}
	if n := seen.GetCardinality(); n != uint64(len(ref)) {
		return moerr.NewInternalError(ctx, "iteration yielded %d keys, expected %d", n, len(ref))
	}
	return nil
}

// drain walks the table with an explicit iterator and removes a random
// half of the entries through it.
func drain(ctx context.Context, m *table, ref map[uint32]uint64, rng *rand.Rand) error {
	visited := roaring.New()
	removed := roaring.New()
	it := m.Iterator()
	for it.HasNext() {
		e, err := it.Next()
		if err != nil {
			return err
		}
		if visited.Contains(e.Key()) {
			return moerr.NewInternalError(ctx, "iterator visited key %d twice", e.Key())
		}
		visited.Add(e.Key())
		if rng.Intn(2) == 0 {
			if err := it.Remove(); err != nil {
				return err
			}
			removed.Add(e.Key())
			delete(ref, e.Key())
		}
	}
	if _, err := it.Next(); !moerr.IsMoErrCode(err, moerr.ErrIteratorExhausted) {
		return moerr.NewInternalError(ctx, "exhausted iterator returned %v", err)
	}
	if n := visited.GetCardinality(); n != uint64(len(ref))+removed.GetCardinality() {
		return moerr.NewInternalError(ctx, "iterator visited %d keys, expected %d",
			n, uint64(len(ref))+removed.GetCardinality())
	}
	if m.Len() != len(ref) {
		return moerr.NewInternalError(ctx, "size %d after iterator removal, expected %d", m.Len(), len(ref))
	}

	var err error
	removed.Iterate(func(k uint32) bool {
		var ok bool
		if ok, err = m.Contains(k); err == nil && ok {
			err = moerr.NewInternalError(ctx, "key %d still present after iterator removal", k)
		}
		return err == nil
	})
	return err
}
