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

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/btree"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/container/chainmap"
)

type demoMap = chainmap.Map[string, int]

// runScenario fills a table with keys "0".."n-1", exercises replace and
// remove around one extra key, then drops every even key. Each step is
// verified and the first mismatch is returned as ErrInvalidState.
func runScenario(ctx context.Context, cfg *Config) (*demoMap, error) {
	m, err := chainmap.NewFromConfig[string, int](ctx, cfg.Map, chainmap.StringHasher())
	if err != nil {
		return nil, err
	}
	n := cfg.Demo.Entries

	expectSize := func(step string, want int) error {
		if m.Len() != want {
			return moerr.NewInvalidState(ctx, "%s: size %d, expected %d", step, m.Len(), want)
		}
		return nil
	}

	for i := 0; i < n; i++ {
		if _, _, err := m.Put(strconv.Itoa(i), i); err != nil {
			return nil, err
		}
	}
	if err := expectSize("fill", n); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		v, ok, err := m.Get(strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		if !ok || v != i {
			return nil, moerr.NewInvalidState(ctx, "get %d: got (%d, %v)", i, v, ok)
		}
	}

	extra := strconv.Itoa(n)
	if _, replaced, err := m.Put(extra, n); err != nil {
		return nil, err
	} else if replaced {
		return nil, moerr.NewInvalidState(ctx, "put %s replaced an entry", extra)
	}
	if err := expectSize("put extra", n+1); err != nil {
		return nil, err
	}

	overwrite := n + 11
	if prev, replaced, err := m.Put(extra, overwrite); err != nil {
		return nil, err
	} else if !replaced || prev != n {
		return nil, moerr.NewInvalidState(ctx, "overwrite %s: got (%d, %v)", extra, prev, replaced)
	}
	if err := expectSize("overwrite extra", n+1); err != nil {
		return nil, err
	}

	if v, ok, err := m.Remove(extra); err != nil {
		return nil, err
	} else if !ok || v != overwrite {
		return nil, moerr.NewInvalidState(ctx, "remove %s: got (%d, %v)", extra, v, ok)
	}
	if err := expectSize("remove extra", n); err != nil {
		return nil, err
	}

	// 10n-1 is never one of the live keys
	missing := strconv.Itoa(10*n - 1)
	if _, ok, err := m.Remove(missing); err != nil {
		return nil, err
	} else if ok {
		return nil, moerr.NewInvalidState(ctx, "remove %s found an entry", missing)
	}
	if _, ok, err := m.Get(missing); err != nil {
		return nil, err
	} else if ok {
		return nil, moerr.NewInvalidState(ctx, "get %s found an entry", missing)
	}
	if err := expectSize("remove missing", n); err != nil {
		return nil, err
	}

	for i := 0; i < n/2; i++ {
		if _, _, err := m.Remove(strconv.Itoa(i * 2)); err != nil {
			return nil, err
		}
	}
	if err := expectSize("remove even", n-n/2); err != nil {
		return nil, err
	}
	return m, nil
}

type byValue chainmap.Entry[string, int]

func (e byValue) Less(than btree.Item) bool {
	o := chainmap.Entry[string, int](than.(byValue))
	x := chainmap.Entry[string, int](e)
	if x.Value() != o.Value() {
		return x.Value() < o.Value()
	}
	return x.Key() < o.Key()
}

// dumpByValue writes one "key=value" line per entry in ascending value
// order.
func dumpByValue(m *demoMap, out io.Writer) error {
	tree := btree.New(8)
	for e := range m.Entries() {
		tree.ReplaceOrInsert(byValue(e))
	}

	var err error
	tree.Ascend(func(item btree.Item) bool {
		_, err = fmt.Fprintln(out, chainmap.Entry[string, int](item.(byValue)).String())
		return err == nil
	})
	return err
}
