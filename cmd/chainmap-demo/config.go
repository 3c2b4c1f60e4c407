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
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/container/chainmap"
	"github.com/matrixorigin/chainmap/pkg/logutil"
)

// Config is the chainmap-demo configuration.
type Config struct {
	Map  chainmap.Config   `toml:"map"`
	Log  logutil.LogConfig `toml:"log"`
	Demo DemoConfig        `toml:"demo"`
}

type DemoConfig struct {
	// Entries is how many sequential keys the scenario puts.
	Entries int `toml:"entries"`
}

// defaultConfig reproduces the classic run: a table created with no
// buckets and a 0.8 load factor, filled with 100 keys.
func defaultConfig() Config {
	return Config{
		Map: chainmap.Config{Capacity: 0, LoadFactor: 0.8},
		Log: logutil.LogConfig{Level: "info", Format: "console"},
		Demo: DemoConfig{
			Entries: 100,
		},
	}
}

func (c *Config) validate(ctx context.Context) error {
	if c.Demo.Entries <= 0 {
		return moerr.NewBadConfig(ctx, "demo entries must be positive, got %d", c.Demo.Entries)
	}
	return c.Map.Validate(ctx)
}

// parseConfigFromFile decodes file over the defaults, so keys missing
// from the file keep their default values. An empty path means defaults.
func parseConfigFromFile(ctx context.Context, file string) (*Config, error) {
	cfg := defaultConfig()
	if file != "" {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return nil, moerr.NewFileNotFound(ctx, file)
		}
		if _, err := toml.DecodeFile(file, &cfg); err != nil {
			return nil, moerr.NewBadConfig(ctx, "decode %s: %v", file, err)
		}
	}
	if err := cfg.validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}
