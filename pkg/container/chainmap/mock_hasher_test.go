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

// Hand-written in the layout mockgen produces. mockgen v1.6.0 cannot
// instantiate the generic Hasher[K], so this file is maintained by hand
// for the Hasher[string] instantiation.

package chainmap

import (
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockStringHasher is a mock of Hasher[string].
type MockStringHasher struct {
	ctrl     *gomock.Controller
	recorder *MockStringHasherMockRecorder
}

// MockStringHasherMockRecorder is the mock recorder for MockStringHasher.
type MockStringHasherMockRecorder struct {
	mock *MockStringHasher
}

// NewMockStringHasher creates a new mock instance.
func NewMockStringHasher(ctrl *gomock.Controller) *MockStringHasher {
	mock := &MockStringHasher{ctrl: ctrl}
	mock.recorder = &MockStringHasherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStringHasher) EXPECT() *MockStringHasherMockRecorder {
	return m.recorder
}

// Equal mocks base method.
func (m *MockStringHasher) Equal(a, b string) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Equal", a, b)
	ret0, _ := ret[0].(bool)
	return ret0
}

// Equal indicates an expected call of Equal.
func (mr *MockStringHasherMockRecorder) Equal(a, b interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Equal", reflect.TypeOf((*MockStringHasher)(nil).Equal), a, b)
}

// Hash mocks base method.
func (m *MockStringHasher) Hash(key string) uint64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Hash", key)
	ret0, _ := ret[0].(uint64)
	return ret0
}

// Hash indicates an expected call of Hash.
func (mr *MockStringHasherMockRecorder) Hash(key interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Hash", reflect.TypeOf((*MockStringHasher)(nil).Hash), key)
}
