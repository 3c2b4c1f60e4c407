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
	"fmt"

	"go.uber.org/zap"
)

const (
	DefaultCapacity   = 16
	DefaultLoadFactor = 0.75
)

// Entry is a key-value pair stored in a bucket. The key never changes
// after the entry is created, the value is overwritten in place.
type Entry[K, V any] struct {
	hash  uint64
	key   K
	value V
}

func (e Entry[K, V]) Key() K {
	return e.key
}

func (e Entry[K, V]) Value() V {
	return e.value
}

func (e Entry[K, V]) String() string {
	return fmt.Sprintf("%v=%v", e.key, e.value)
}

// bucket is the chain of entries that share one hash slot.
type bucket[K, V any] struct {
	entries []Entry[K, V]
}

// Map is a separately chained hash map. It grows by doubling its bucket
// array once size/capacity exceeds the load factor.
//
// A Map is not safe for concurrent use.
type Map[K, V any] struct {
	buckets    []bucket[K, V]
	size       int
	loadFactor float64
	hasher     Hasher[K]

	// modCount is bumped on every structural change and checked by
	// iterators.
	modCount uint64

	// set when nil is representable for K or V
	nilKey   bool
	nilValue bool

	logger *zap.Logger
}

type options struct {
	logger *zap.Logger
}

// Option customizes a Map at construction.
type Option func(*options)

// WithLogger sets the logger resize events go to.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
