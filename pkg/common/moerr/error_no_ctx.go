// Copyright 2021 - 2022 Matrix Origin
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

package moerr

// NoCtx variants are for hot paths that have no context to pass along.

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(Context(), msg, args...)
}

func NewInvalidArgNoCtx(arg string, val any) *Error {
	return NewInvalidArg(Context(), arg, val)
}

func NewNullKeyOrValueNoCtx(what string) *Error {
	return NewNullKeyOrValue(Context(), what)
}

func NewIteratorExhaustedNoCtx() *Error {
	return NewIteratorExhausted(Context())
}

func NewIllegalIteratorStateNoCtx(msg string, args ...any) *Error {
	return NewIllegalIteratorState(Context(), msg, args...)
}

func NewConcurrentModificationNoCtx(expected, actual uint64) *Error {
	return NewConcurrentModification(Context(), expected, actual)
}
