// Copyright 2021 Matrix Origin
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

package chainmap

import (
	"context"
	"math"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
)

// Config is the construction parameters of a Map.
type Config struct {
	// Capacity is the initial number of buckets. Zero is allowed, the
	// first Put then grows the map to one bucket.
	Capacity int `toml:"capacity"`
	// LoadFactor is the size/capacity ratio above which a Put doubles the
	// bucket array.
	LoadFactor float64 `toml:"load-factor"`
}

func DefaultConfig() Config {
	return Config{
		Capacity:   DefaultCapacity,
		LoadFactor: DefaultLoadFactor,
	}
}

func (c Config) Validate(ctx context.Context) error {
	if c.Capacity < 0 {
		return moerr.NewInvalidArg(ctx, "capacity", c.Capacity)
	}
	if !(c.LoadFactor > 0) || math.IsInf(c.LoadFactor, 1) {
		return moerr.NewInvalidArg(ctx, "load factor", c.LoadFactor)
	}
	return nil
}
