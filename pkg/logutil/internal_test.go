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

package logutil

import (
	"context"
	"os"
	"path"
	"regexp"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matrixorigin/chainmap/pkg/common/moerr"
)

func TestLogConfig_getter(t *testing.T) {
	type fields struct {
		Level      string
		Format     string
		Filename   string
		MaxSize    int
		MaxDays    int
		MaxBackups int

		Entry zapcore.Entry
	}
	tests := []struct {
		name        string
		fields      fields
		wantLevel   zap.AtomicLevel
		wantOpts    []zap.Option
		wantSyncer  zapcore.WriteSyncer
		wantEncoder zapcore.Encoder
		wantSinks   []ZapSink
	}{
		{
			name: "normal",
			fields: fields{
				Level:      "debug",
				Format:     "console",
				Filename:   "",
				MaxSize:    0,
				MaxDays:    0,
				MaxBackups: 0,

				Entry: zapcore.Entry{Level: zapcore.DebugLevel, Message: "console msg"},
			},
			wantLevel:   zap.NewAtomicLevelAt(zap.DebugLevel),
			wantOpts:    []zap.Option{zap.AddStacktrace(zapcore.FatalLevel), zap.AddCaller()},
			wantSyncer:  getConsoleSyncer(),
			wantEncoder: getLoggerEncoder("console"),
			wantSinks:   []ZapSink{{getLoggerEncoder("console"), getConsoleSyncer()}},
		},
		{
			name: "json",
			fields: fields{
				Level:  "warn",
				Format: "json",

				Entry: zapcore.Entry{Level: zapcore.WarnLevel, Message: "json msg"},
			},
			wantLevel:   zap.NewAtomicLevelAt(zap.WarnLevel),
			wantOpts:    []zap.Option{zap.AddStacktrace(zapcore.FatalLevel), zap.AddCaller()},
			wantSyncer:  getConsoleSyncer(),
			wantEncoder: getLoggerEncoder("json"),
			wantSinks:   []ZapSink{{getLoggerEncoder("json"), getConsoleSyncer()}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &LogConfig{
				Level:      tt.fields.Level,
				Format:     tt.fields.Format,
				Filename:   tt.fields.Filename,
				MaxSize:    tt.fields.MaxSize,
				MaxDays:    tt.fields.MaxDays,
				MaxBackups: tt.fields.MaxBackups,
			}
			require.Equal(t, tt.wantLevel.Level(), cfg.getLevel().Level())
			require.Equal(t, len(tt.wantOpts), len(cfg.getOptions()))
			require.Equal(t, tt.wantSyncer, cfg.getSyncer())
			wantMsg, _ := tt.wantEncoder.EncodeEntry(tt.fields.Entry, nil)
			gotMsg, _ := cfg.getEncoder().EncodeEntry(tt.fields.Entry, nil)
			require.Equal(t, wantMsg.String(), gotMsg.String())
			require.Equal(t, len(tt.wantSinks), len(cfg.getSinks()))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	defer leaktest.AfterTest(t)()
	prev := GetGlobalLogger()
	defer func() {
		_globalLogger.Store(prev)
		zap.ReplaceGlobals(prev)
	}()

	tests := []struct {
		name string
		conf *LogConfig
	}{
		{
			name: "console",
			conf: &LogConfig{
				Level:           zapcore.DebugLevel.String(),
				Format:          "console",
				MaxSize:         512,
				StacktraceLevel: "panic",
			},
		},
		{
			name: "json",
			conf: &LogConfig{
				Level:           zapcore.DebugLevel.String(),
				Format:          "json",
				MaxSize:         512,
				StacktraceLevel: "error",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.conf)
			require.True(t, GetGlobalLogger().Core().Enabled(zapcore.DebugLevel))
			require.Equal(t, GetGlobalLogger(), zap.L())
		})
	}
}

func TestSetupLogger_panic(t *testing.T) {
	defer leaktest.AfterTest(t)()
	tests := []struct {
		name    string
		conf    *LogConfig
		wantErr uint16
	}{
		{
			name:    "format",
			conf:    &LogConfig{Level: "debug", Format: "panic"},
			wantErr: moerr.ErrInternal,
		},
		{
			name:    "level",
			conf:    &LogConfig{Level: "loud", Format: "console"},
			wantErr: moerr.ErrBadConfig,
		},
		{
			name:    "stacktrace",
			conf:    &LogConfig{Level: "info", Format: "console", StacktraceLevel: "never"},
			wantErr: moerr.ErrBadConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				err := recover()
				require.NotNil(t, err, "not receive panic")
				require.True(t, moerr.IsMoErrCode(err.(error), tt.wantErr))
			}()
			SetupLogger(tt.conf)
		})
	}
}

func Test_getLoggerEncoder(t *testing.T) {
	defer leaktest.AfterTest(t)()
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Message: "resize"}
	fields := []zap.Field{zap.Int("old-capacity", 16), zap.Int("new-capacity", 32)}

	tests := []struct {
		name       string
		format     string
		wantOutput *regexp.Regexp
	}{
		{
			name:       "console",
			format:     "console",
			wantOutput: regexp.MustCompile(`INFO\s+resize\s+{"old-capacity": 16, "new-capacity": 32}`),
		},
		{
			name:       "json",
			format:     "json",
			wantOutput: regexp.MustCompile(`"msg":"resize","old-capacity":16,"new-capacity":32`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := getLoggerEncoder(tt.format).EncodeEntry(entry, fields)
			require.NoError(t, err)
			require.Regexp(t, tt.wantOutput, buf.String())
		})
	}
}

func TestFileSink(t *testing.T) {
	// lumberjack keeps a background goroutine per logger, so no leaktest here.
	prev := GetGlobalLogger()
	defer func() {
		_globalLogger.Store(prev)
		zap.ReplaceGlobals(prev)
	}()

	filename := path.Join(t.TempDir(), "chainmap.log")
	SetupLogger(&LogConfig{
		Level:      "info",
		Format:     "json",
		Filename:   filename,
		MaxSize:    1,
		MaxDays:    1,
		MaxBackups: 1,
	})
	Info("file sink", zap.String("table", "t1"))
	Debug("dropped")
	_ = LogClose()

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"file sink"`)
	require.Contains(t, string(data), `"table":"t1"`)
	require.NotContains(t, string(data), "dropped")
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, ContextFields(ctx))
	require.Equal(t, ctx, WithContextFields(ctx))

	ctx1 := WithContextFields(ctx, zap.String("worker", "1"))
	ctx2 := WithContextFields(ctx1, zap.Int("round", 3))
	require.Equal(t, []zap.Field{zap.String("worker", "1")}, ContextFields(ctx1))
	require.Equal(t, []zap.Field{zap.String("worker", "1"), zap.Int("round", 3)}, ContextFields(ctx2))
}

func TestLevelHelpers(t *testing.T) {
	old := GetGlobalLogger()
	defer _globalLogger.Store(old)

	core, logs := observer.New(zapcore.InfoLevel)
	_globalLogger.Store(zap.New(core))

	Debug("dropped")
	Info("info", zap.Int("n", 1))
	Warn("warn")
	Error("error")

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, "info", entries[0].Message)
	require.Equal(t, int64(1), entries[0].ContextMap()["n"])
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
