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
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/logutil"
)

var (
	configFile = flag.String("cfg", "", "toml configuration used by chainmap-demo, defaults apply when empty")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := parseConfigFromFile(ctx, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config from %s, error: %s\n", *configFile, err.Error())
		os.Exit(1)
	}
	if err := setupLogger(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logger, error: %s\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logutil.LogClose()
	}()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logutil.Error("chainmap demo failed", zap.Error(err))
		_ = logutil.LogClose()
		os.Exit(1)
	}
}

func setupLogger(ctx context.Context, cfg *Config) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(ctx, e)
		}
	}()
	logutil.SetupLogger(&cfg.Log)
	return nil
}

func run(ctx context.Context, cfg *Config, out io.Writer) error {
	logutil.Debug("chainmap demo config",
		zap.Int("capacity", cfg.Map.Capacity),
		zap.Float64("load-factor", cfg.Map.LoadFactor),
		zap.Int("entries", cfg.Demo.Entries))
	m, err := runScenario(ctx, cfg)
	if err != nil {
		return err
	}
	logutil.Info("chainmap demo scenario passed",
		zap.Int("size", m.Len()),
		zap.Int("capacity", m.Capacity()),
		zap.Float64("load", m.CurrentLoad()))
	return dumpByValue(m, out)
}
