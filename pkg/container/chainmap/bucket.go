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

// find returns the position of key in the chain, or -1.
func (b *bucket[K, V]) find(hasher Hasher[K], hash uint64, key K) int {
	for i := range b.entries {
		e := &b.entries[i]
		if e.hash == hash && hasher.Equal(e.key, key) {
			return i
		}
	}
	return -1
}

func (b *bucket[K, V]) append(hash uint64, key K, value V) {
	b.entries = append(b.entries, Entry[K, V]{hash: hash, key: key, value: value})
}

// removeAt deletes the i-th entry keeping the order of the rest.
func (b *bucket[K, V]) removeAt(i int) Entry[K, V] {
	e := b.entries[i]
	last := len(b.entries) - 1
	copy(b.entries[i:], b.entries[i+1:])
	b.entries[last] = Entry[K, V]{}
	b.entries = b.entries[:last]
	return e
}

func (b *bucket[K, V]) reset() {
	clear(b.entries)
	b.entries = b.entries[:0]
}
