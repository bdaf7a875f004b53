package ntfsgo

import (
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockDiskBackend is a hand-written gomock-style mock for diskBackend,
// following the shape mockgen would generate.
type MockDiskBackend struct {
	ctrl     *gomock.Controller
	recorder *MockDiskBackendMockRecorder
}

type MockDiskBackendMockRecorder struct {
	mock *MockDiskBackend
}

func NewMockDiskBackend(ctrl *gomock.Controller) *MockDiskBackend {
	mock := &MockDiskBackend{ctrl: ctrl}
	mock.recorder = &MockDiskBackendMockRecorder{mock: mock}

	return mock
}

func (m *MockDiskBackend) EXPECT() *MockDiskBackendMockRecorder {
	return m.recorder
}

func (m *MockDiskBackend) readAt(p []byte, off int64) error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "readAt", p, off)
	err, _ := ret[0].(error)

	return err
}

func (mr *MockDiskBackendMockRecorder) readAt(p, off interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "readAt", reflect.TypeOf((*MockDiskBackend)(nil).readAt), p, off)
}

func (m *MockDiskBackend) writeAt(p []byte, off int64) error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "writeAt", p, off)
	err, _ := ret[0].(error)

	return err
}

func (mr *MockDiskBackendMockRecorder) writeAt(p, off interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "writeAt", reflect.TypeOf((*MockDiskBackend)(nil).writeAt), p, off)
}

func (m *MockDiskBackend) truncate(size int64) error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "truncate", size)
	err, _ := ret[0].(error)

	return err
}

func (mr *MockDiskBackendMockRecorder) truncate(size interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "truncate", reflect.TypeOf((*MockDiskBackend)(nil).truncate), size)
}

func (m *MockDiskBackend) size() (int64, error) {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "size")
	n, _ := ret[0].(int64)
	err, _ := ret[1].(error)

	return n, err
}

func (mr *MockDiskBackendMockRecorder) size() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "size", reflect.TypeOf((*MockDiskBackend)(nil).size))
}

func (m *MockDiskBackend) sync() error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "sync")
	err, _ := ret[0].(error)

	return err
}

func (mr *MockDiskBackendMockRecorder) sync() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "sync", reflect.TypeOf((*MockDiskBackend)(nil).sync))
}

func (m *MockDiskBackend) close() error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "close")
	err, _ := ret[0].(error)

	return err
}

func (mr *MockDiskBackendMockRecorder) close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "close", reflect.TypeOf((*MockDiskBackend)(nil).close))
}
