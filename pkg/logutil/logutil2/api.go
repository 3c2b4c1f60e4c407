// Copyright 2021 Matrix Origin
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

// Package logutil2 logs with the fields attached to a context by
// logutil.WithContextFields.
package logutil2

import (
	"context"

	"go.uber.org/zap"

	"github.com/matrixorigin/chainmap/pkg/logutil"
)

func logger(ctx context.Context) *zap.Logger {
	return logutil.GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).With(logutil.ContextFields(ctx)...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	logger(ctx).Debug(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	logger(ctx).Error(msg, fields...)
}
