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
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/logutil"
)

// New returns an empty map with DefaultCapacity buckets and
// DefaultLoadFactor. It panics with ErrInvalidArg if hasher is nil, use
// NewFromConfig to get the error instead.
func New[K, V any](hasher Hasher[K], opts ...Option) *Map[K, V] {
	m, err := NewFromConfig[K, V](moerr.Context(), DefaultConfig(), hasher, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithCapacity returns an empty map with exactly capacity buckets.
// It fails with ErrInvalidArg on a negative capacity, a load factor that
// is not a positive finite number, or a nil hasher.
func NewWithCapacity[K, V any](
	ctx context.Context,
	capacity int,
	loadFactor float64,
	hasher Hasher[K],
	opts ...Option,
) (*Map[K, V], error) {
	return NewFromConfig[K, V](ctx, Config{Capacity: capacity, LoadFactor: loadFactor}, hasher, opts...)
}

func NewFromConfig[K, V any](
	ctx context.Context,
	cfg Config,
	hasher Hasher[K],
	opts ...Option,
) (*Map[K, V], error) {
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	if hasher == nil {
		return nil, moerr.NewInvalidArg(ctx, "hasher", nil)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logutil.GetGlobalLogger().Named("chainmap")
	}

	return &Map[K, V]{
		buckets:    make([]bucket[K, V], cfg.Capacity),
		loadFactor: cfg.LoadFactor,
		hasher:     hasher,
		nilKey:     nillable[K](),
		nilValue:   nillable[V](),
		logger:     o.logger,
	}, nil
}

// Get returns the value stored for key. ok is false if the key is absent.
func (m *Map[K, V]) Get(key K) (value V, ok bool, err error) {
	if err = m.checkKey(key); err != nil {
		return
	}
	b, i := m.locate(key)
	if i < 0 {
		return
	}
	return b.entries[i].value, true, nil
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// Put maps key to value. If the key was present its value is replaced in
// place and the previous value is returned with replaced set.
//
// When the current load exceeds the load factor the bucket array is
// doubled before the key is placed.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool, err error) {
	if err = m.checkKey(key); err != nil {
		return
	}
	if m.nilValue && isNil(value) {
		err = moerr.NewNullKeyOrValueNoCtx("value")
		return
	}

	if m.CurrentLoad() > m.loadFactor {
		m.resize()
	}
	prev, replaced = m.insert(m.hasher.Hash(key), key, value)
	return
}

// Remove deletes key and returns the value it held. ok is false if the
// key is absent.
func (m *Map[K, V]) Remove(key K) (value V, ok bool, err error) {
	if err = m.checkKey(key); err != nil {
		return
	}
	b, i := m.locate(key)
	if i < 0 {
		return
	}
	e := b.removeAt(i)
	m.size--
	m.modCount++
	return e.value, true, nil
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Capacity returns the number of buckets.
func (m *Map[K, V]) Capacity() int {
	return len(m.buckets)
}

func (m *Map[K, V]) LoadFactor() float64 {
	return m.loadFactor
}

// CurrentLoad returns size/capacity, or +Inf when there is no bucket.
func (m *Map[K, V]) CurrentLoad() float64 {
	if len(m.buckets) == 0 {
		return math.Inf(1)
	}
	return float64(m.size) / float64(len(m.buckets))
}

// Clear drops every entry and keeps the bucket array.
func (m *Map[K, V]) Clear() {
	for i := range m.buckets {
		m.buckets[i].reset()
	}
	m.size = 0
	m.modCount++
}

func (m *Map[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range m.buckets {
		for _, e := range m.buckets[i].entries {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(e.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

func (m *Map[K, V]) checkKey(key K) error {
	if m.nilKey && isNil(key) {
		return moerr.NewNullKeyOrValueNoCtx("key")
	}
	return nil
}

// locate returns the bucket of key and its position in the chain, or -1
// when the key is absent. The bucket is nil when the map has no bucket.
func (m *Map[K, V]) locate(key K) (*bucket[K, V], int) {
	if len(m.buckets) == 0 {
		return nil, -1
	}
	h := m.hasher.Hash(key)
	b := &m.buckets[m.bucketIndex(h)]
	return b, b.find(m.hasher, h, key)
}

func (m *Map[K, V]) bucketIndex(hash uint64) uint64 {
	return hash % uint64(len(m.buckets))
}

// insert is the single placement path shared by Put and resize. The map
// must have at least one bucket.
func (m *Map[K, V]) insert(hash uint64, key K, value V) (prev V, replaced bool) {
	b := &m.buckets[m.bucketIndex(hash)]
	if i := b.find(m.hasher, hash, key); i >= 0 {
		prev = b.entries[i].value
		b.entries[i].value = value
		return prev, true
	}
	b.append(hash, key, value)
	m.size++
	m.modCount++
	return
}

// resize reallocates the bucket array with twice the capacity, or one
// bucket when there was none, and reinserts every entry.
func (m *Map[K, V]) resize() {
	oldBuckets := m.buckets
	oldSize := m.size

	newCap := 1
	if len(oldBuckets) > 0 {
		newCap = len(oldBuckets) * 2
	}
	m.buckets = make([]bucket[K, V], newCap)
	m.size = 0
	for i := range oldBuckets {
		for _, e := range oldBuckets[i].entries {
			m.insert(e.hash, e.key, e.value)
		}
	}
	m.modCount++

	if m.size != oldSize {
		panic(moerr.NewInternalErrorNoCtx("chainmap resize lost entries: before %d, after %d", oldSize, m.size))
	}
	m.logger.Debug("chainmap resized",
		zap.Int("old-capacity", len(oldBuckets)),
		zap.Int("new-capacity", newCap),
		zap.Int("size", m.size),
	)
}

func nillable[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
