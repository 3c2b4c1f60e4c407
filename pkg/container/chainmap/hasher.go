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
	"bytes"
	"encoding/binary"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher supplies hashing and equality for keys of type K.
// If Equal(a, b) then Hash(a) == Hash(b).
type Hasher[K any] interface {
	Hash(key K) uint64
	Equal(a, b K) bool
}

// Hashable is implemented by key types that hash and compare themselves.
type Hashable[K any] interface {
	Hash() uint64
	Equal(other K) bool
}

type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type hashableHasher[K Hashable[K]] struct{}

// HashableHasher returns a Hasher that defers to the key's own methods.
func HashableHasher[K Hashable[K]]() Hasher[K] {
	return hashableHasher[K]{}
}

func (hashableHasher[K]) Hash(key K) uint64 {
	return key.Hash()
}

func (hashableHasher[K]) Equal(a, b K) bool {
	return a.Equal(b)
}

type stringHasher struct{}

func StringHasher() Hasher[string] {
	return stringHasher{}
}

func (stringHasher) Hash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (stringHasher) Equal(a, b string) bool {
	return a == b
}

type bytesHasher struct{}

// BytesHasher hashes byte slices by content. A nil slice is a nil key
// and is rejected by the map, use []byte{} for the empty key.
func BytesHasher() Hasher[[]byte] {
	return bytesHasher{}
}

func (bytesHasher) Hash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

func (bytesHasher) Equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}

type intHasher[K Integer] struct{}

func IntHasher[K Integer]() Hasher[K] {
	return intHasher[K]{}
}

func (intHasher[K]) Hash(key K) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return xxhash.Sum64(buf[:])
}

func (intHasher[K]) Equal(a, b K) bool {
	return a == b
}

type comparableHasher[K comparable] struct {
	seed maphash.Seed
}

// ComparableHasher hashes any comparable key with hash/maphash. The seed
// is random per hasher, so hashes differ between hashers and processes.
func ComparableHasher[K comparable]() Hasher[K] {
	return comparableHasher[K]{seed: maphash.MakeSeed()}
}

func (h comparableHasher[K]) Hash(key K) uint64 {
	return maphash.Comparable(h.seed, key)
}

func (comparableHasher[K]) Equal(a, b K) bool {
	return a == b
}

type funcHasher[K any] struct {
	hash  func(K) uint64
	equal func(a, b K) bool
}

// FuncHasher adapts a pair of functions to a Hasher.
func FuncHasher[K any](hash func(K) uint64, equal func(a, b K) bool) Hasher[K] {
	return funcHasher[K]{hash: hash, equal: equal}
}

func (h funcHasher[K]) Hash(key K) uint64 {
	return h.hash(key)
}

func (h funcHasher[K]) Equal(a, b K) bool {
	return h.equal(a, b)
}
