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

// Package chaincheck drives randomized workloads against chainmap and
// compares every result with Go's builtin map. Each round owns its own
// table, rounds run in parallel on a worker pool.
package chaincheck

import (
	"context"

	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/container/chainmap"
)

type Config struct {
	// Workers is the size of the goroutine pool.
	Workers int `toml:"workers"`
	// Rounds is the number of independent tables to check.
	Rounds int `toml:"rounds"`
	// Ops is the number of random operations per round.
	Ops int `toml:"ops"`
	// KeySpace bounds the keys drawn, small values force replacements
	// and removals of present keys.
	KeySpace int `toml:"key-space"`
	// Seed of round i is Seed+i.
	Seed int64 `toml:"seed"`

	Map chainmap.Config `toml:"map"`
}

func DefaultConfig() Config {
	return Config{
		Workers:  4,
		Rounds:   64,
		Ops:      10000,
		KeySpace: 4096,
		Seed:     1,
		Map:      chainmap.DefaultConfig(),
	}
}

func (c Config) Validate(ctx context.Context) error {
	if c.Workers <= 0 {
		return moerr.NewBadConfig(ctx, "workers must be positive, got %d", c.Workers)
	}
	if c.Rounds <= 0 {
		return moerr.NewBadConfig(ctx, "rounds must be positive, got %d", c.Rounds)
	}
	if c.Ops < 0 {
		return moerr.NewBadConfig(ctx, "ops must not be negative, got %d", c.Ops)
	}
	if c.KeySpace <= 0 {
		return moerr.NewBadConfig(ctx, "key-space must be positive, got %d", c.KeySpace)
	}
	return c.Map.Validate(ctx)
}

// Report summarizes a Run.
type Report struct {
	Rounds int
	Ops    int
	// Resizes counts capacity changes seen across all rounds.
	Resizes int
	// MaxCapacity is the largest bucket count any round reached.
	MaxCapacity int
	// DistinctKeys estimates how many different keys were put.
	DistinctKeys uint64
	// Failures holds one error per failed round.
	Failures []error
}

type roundResult struct {
	round       int
	ops         int
	resizes     int
	maxCapacity int
	// sketch holds every key the round put.
	sketch *hyperloglog.Sketch
	err    error
}
