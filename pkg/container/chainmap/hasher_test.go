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
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

// caseless is a key that ignores letter case.
type caseless string

func (c caseless) Hash() uint64 {
	return xxhash.Sum64String(strings.ToLower(string(c)))
}

func (c caseless) Equal(other caseless) bool {
	return strings.EqualFold(string(c), string(other))
}

func TestStringHasher(t *testing.T) {
	h := StringHasher()
	require.Equal(t, xxhash.Sum64String("matrix"), h.Hash("matrix"))
	require.Equal(t, h.Hash("matrix"), h.Hash(strings.Clone("matrix")))
	require.True(t, h.Equal("a", "a"))
	require.False(t, h.Equal("a", "b"))
}

func TestBytesHasher(t *testing.T) {
	h := BytesHasher()
	require.Equal(t, h.Hash([]byte("origin")), h.Hash([]byte("origin")))
	require.Equal(t, h.Hash([]byte{}), h.Hash(nil))
	require.True(t, h.Equal([]byte("x"), []byte("x")))
	require.False(t, h.Equal([]byte("x"), []byte("y")))

	m := New[[]byte, string](h)
	_, _, err := m.Put([]byte("k"), "v")
	require.NoError(t, err)
	v, ok, err := m.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestIntHasher(t *testing.T) {
	h := IntHasher[int64]()
	require.Equal(t, h.Hash(-1), h.Hash(-1))
	require.NotEqual(t, h.Hash(-1), h.Hash(1))

	type id uint16
	hid := IntHasher[id]()
	require.Equal(t, IntHasher[uint64]().Hash(7), hid.Hash(7))
	require.True(t, hid.Equal(3, 3))
}

func TestComparableHasher(t *testing.T) {
	type point struct {
		x, y int
	}
	h := ComparableHasher[point]()
	require.Equal(t, h.Hash(point{1, 2}), h.Hash(point{1, 2}))
	require.True(t, h.Equal(point{1, 2}, point{1, 2}))
	require.False(t, h.Equal(point{1, 2}, point{2, 1}))

	m := New[point, string](h)
	for i := 0; i < 100; i++ {
		_, _, err := m.Put(point{i, -i}, "p")
		require.NoError(t, err)
	}
	require.Equal(t, 100, m.Len())
	ok, err := m.Contains(point{42, -42})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHashableHasher(t *testing.T) {
	m := New[caseless, int](HashableHasher[caseless]())
	_, _, err := m.Put("Matrix", 1)
	require.NoError(t, err)

	prev, replaced, err := m.Put("MATRIX", 2)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, 1, prev)
	require.Equal(t, 1, m.Len())

	v, ok, err := m.Get("matrix")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, v)

	// the key keeps the spelling it was first stored with
	for k := range m.All() {
		require.Equal(t, caseless("Matrix"), k)
	}
}

func TestFuncHasher(t *testing.T) {
	calls := 0
	h := FuncHasher(func(k string) uint64 {
		calls++
		return uint64(len(k))
	}, func(a, b string) bool {
		return a == b
	})
	require.Equal(t, uint64(3), h.Hash("abc"))
	require.Equal(t, 1, calls)
	require.True(t, h.Equal("abc", "abc"))
}
