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
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/matrixorigin/chainmap/pkg/chaincheck"
	"github.com/matrixorigin/chainmap/pkg/common/moerr"
	"github.com/matrixorigin/chainmap/pkg/logutil"
)

type Config struct {
	Check chaincheck.Config `toml:"check"`
	Log   logutil.LogConfig `toml:"log"`
}

func defaultConfig() Config {
	return Config{
		Check: chaincheck.DefaultConfig(),
		Log:   logutil.LogConfig{Level: "info", Format: "console"},
	}
}

// parseConfig decodes the optional TOML file over the defaults, then
// applies the flags that were set explicitly on the command line.
func parseConfig(ctx context.Context, args []string) (*Config, error) {
	fs := flag.NewFlagSet("chainmap-check", flag.ContinueOnError)
	var (
		file     = fs.String("cfg", "", "toml configuration used by chainmap-check")
		workers  = fs.Int("workers", 0, "size of the worker pool")
		rounds   = fs.Int("rounds", 0, "number of independent tables to check")
		ops      = fs.Int("ops", 0, "random operations per round")
		keySpace = fs.Int("key-space", 0, "number of distinct keys drawn from")
		seed     = fs.Int64("seed", 0, "seed of the first round")
	)
	if err := fs.Parse(args); err != nil {
		return nil, moerr.NewInvalidInput(ctx, "%v", err)
	}

	cfg := defaultConfig()
	if *file != "" {
		if _, err := os.Stat(*file); os.IsNotExist(err) {
			return nil, moerr.NewFileNotFound(ctx, *file)
		}
		if _, err := toml.DecodeFile(*file, &cfg); err != nil {
			return nil, moerr.NewBadConfig(ctx, "decode %s: %v", *file, err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Check.Workers = *workers
		case "rounds":
			cfg.Check.Rounds = *rounds
		case "ops":
			cfg.Check.Ops = *ops
		case "key-space":
			cfg.Check.KeySpace = *keySpace
		case "seed":
			cfg.Check.Seed = *seed
		}
	})
	return &cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	code := 0
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "chainmap-check failed: %s\n", err.Error())
		code = 1
	}
	_ = logutil.LogClose()
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := parseConfig(ctx, args)
	if err != nil {
		return err
	}
	if err := setupLogger(ctx, &cfg.Log); err != nil {
		return err
	}

	runner, err := chaincheck.NewRunner(ctx, cfg.Check)
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx)
	for _, f := range report.Failures {
		logutil.Error("chaincheck round failed", zap.String("error", moerr.DowncastError(f).Display()))
	}
	fmt.Fprintf(out, "rounds=%d ops=%d resizes=%d max-capacity=%d distinct-keys~%d failures=%d\n",
		report.Rounds, report.Ops, report.Resizes, report.MaxCapacity, report.DistinctKeys, len(report.Failures))
	return err
}

func setupLogger(ctx context.Context, cfg *logutil.LogConfig) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(ctx, e)
		}
	}()
	logutil.SetupLogger(cfg)
	return nil
}
