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
	"iter"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
)

// Iterator walks the entries in bucket order, then chain order. The
// order is unrelated to insertion order.
//
// The only modification allowed while iterating is Iterator.Remove; any
// other structural change makes Next and Remove fail with
// ErrConcurrentModification.
type Iterator[K, V any] struct {
	m *Map[K, V]
	// cursor: the next entry to return is at or after (bucket, pos)
	bucket int
	pos    int
	// lastValid is set by Next and cleared by Remove.
	lastValid bool
	modCount  uint64
}

// Iterator returns a fresh iterator positioned before the first entry.
func (m *Map[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{
		m:        m,
		modCount: m.modCount,
	}
}

func (it *Iterator[K, V]) HasNext() bool {
	buckets := it.m.buckets
	pos := it.pos
	for b := it.bucket; b < len(buckets); b, pos = b+1, 0 {
		if pos < len(buckets[b].entries) {
			return true
		}
	}
	return false
}

// Next returns the next entry, or ErrIteratorExhausted when there is none.
func (it *Iterator[K, V]) Next() (Entry[K, V], error) {
	if err := it.checkModification(); err != nil {
		return Entry[K, V]{}, err
	}
	buckets := it.m.buckets
	pos := it.pos
	for b := it.bucket; b < len(buckets); b, pos = b+1, 0 {
		if pos < len(buckets[b].entries) {
			it.bucket, it.pos = b, pos+1
			it.lastValid = true
			return buckets[b].entries[pos], nil
		}
	}
	return Entry[K, V]{}, moerr.NewIteratorExhaustedNoCtx()
}

// Remove deletes the entry returned by the last Next. It fails with
// ErrIllegalIteratorState if Next has not been called since the iterator
// was created or since the previous Remove.
func (it *Iterator[K, V]) Remove() error {
	if !it.lastValid {
		return moerr.NewIllegalIteratorStateNoCtx("remove without a preceding next")
	}
	if err := it.checkModification(); err != nil {
		return err
	}
	// the chain shifts left, so the successor now sits at pos-1
	it.pos--
	it.m.buckets[it.bucket].removeAt(it.pos)
	it.m.size--
	it.m.modCount++
	it.modCount = it.m.modCount
	it.lastValid = false
	return nil
}

func (it *Iterator[K, V]) checkModification() error {
	if it.modCount != it.m.modCount {
		return moerr.NewConcurrentModificationNoCtx(it.modCount, it.m.modCount)
	}
	return nil
}

// All returns a sequence over the live entries in iteration order. Each
// call starts a new pass. The map must not be modified during the pass.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		buckets := m.buckets
		for i := range buckets {
			for _, e := range buckets[i].entries {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Entries is like All but yields whole entries.
func (m *Map[K, V]) Entries() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		buckets := m.buckets
		for i := range buckets {
			for _, e := range buckets[i].entries {
				if !yield(e) {
					return
				}
			}
		}
	}
}
