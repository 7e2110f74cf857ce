package mock

import (
	context "context"
	reflect "reflect"
	time "time"

	models "github.com/Misacorp/leetbot/leetbot/database/models"
	gomock "go.uber.org/mock/gomock"
)

// MockEventStore is a mock of EventStore interface.
type MockEventStore struct {
	ctrl     *gomock.Controller
	recorder *MockEventStoreMockRecorder
	isgomock struct{}
}

// MockEventStoreMockRecorder is the mock recorder for MockEventStore.
type MockEventStoreMockRecorder struct {
	mock *MockEventStore
}

// NewMockEventStore creates a new mock instance.
func NewMockEventStore(ctrl *gomock.Controller) *MockEventStore {
	mock := &MockEventStore{ctrl: ctrl}
	mock.recorder = &MockEventStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEventStore) EXPECT() *MockEventStoreMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockEventStore) Create(ctx context.Context, event *models.GameEvent) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, event)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockEventStoreMockRecorder) Create(ctx, event any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockEventStore)(nil).Create), ctx, event)
}

// HasScoredOnDay mocks base method.
func (m *MockEventStore) HasScoredOnDay(ctx context.Context, guildID, userID string, at time.Time) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "HasScoredOnDay", ctx, guildID, userID, at)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// HasScoredOnDay indicates an expected call of HasScoredOnDay.
func (mr *MockEventStoreMockRecorder) HasScoredOnDay(ctx, guildID, userID, at any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "HasScoredOnDay", reflect.TypeOf((*MockEventStore)(nil).HasScoredOnDay), ctx, guildID, userID, at)
}

// MockProfileStore is a mock of ProfileStore interface.
type MockProfileStore struct {
	ctrl     *gomock.Controller
	recorder *MockProfileStoreMockRecorder
	isgomock struct{}
}

// MockProfileStoreMockRecorder is the mock recorder for MockProfileStore.
type MockProfileStoreMockRecorder struct {
	mock *MockProfileStore
}

// NewMockProfileStore creates a new mock instance.
func NewMockProfileStore(ctrl *gomock.Controller) *MockProfileStore {
	mock := &MockProfileStore{ctrl: ctrl}
	mock.recorder = &MockProfileStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProfileStore) EXPECT() *MockProfileStoreMockRecorder {
	return m.recorder
}

// Upsert mocks base method.
func (m *MockProfileStore) Upsert(ctx context.Context, profile *models.UserProfile) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upsert", ctx, profile)
	ret0, _ := ret[0].(error)
	return ret0
}

// Upsert indicates an expected call of Upsert.
func (mr *MockProfileStoreMockRecorder) Upsert(ctx, profile any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockProfileStore)(nil).Upsert), ctx, profile)
}

// MockGuildStore is a mock of GuildStore interface.
type MockGuildStore struct {
	ctrl     *gomock.Controller
	recorder *MockGuildStoreMockRecorder
	isgomock struct{}
}

// MockGuildStoreMockRecorder is the mock recorder for MockGuildStore.
type MockGuildStoreMockRecorder struct {
	mock *MockGuildStore
}

// NewMockGuildStore creates a new mock instance.
func NewMockGuildStore(ctrl *gomock.Controller) *MockGuildStore {
	mock := &MockGuildStore{ctrl: ctrl}
	mock.recorder = &MockGuildStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockGuildStore) EXPECT() *MockGuildStoreMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockGuildStore) Get(ctx context.Context, guildID string) (*models.GuildProfile, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, guildID)
	ret0, _ := ret[0].(*models.GuildProfile)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockGuildStoreMockRecorder) Get(ctx, guildID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockGuildStore)(nil).Get), ctx, guildID)
}

// MockNotifier is a mock of Notifier interface.
type MockNotifier struct {
	ctrl     *gomock.Controller
	recorder *MockNotifierMockRecorder
	isgomock struct{}
}

// MockNotifierMockRecorder is the mock recorder for MockNotifier.
type MockNotifierMockRecorder struct {
	mock *MockNotifier
}

// NewMockNotifier creates a new mock instance.
func NewMockNotifier(ctrl *gomock.Controller) *MockNotifier {
	mock := &MockNotifier{ctrl: ctrl}
	mock.recorder = &MockNotifierMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNotifier) EXPECT() *MockNotifierMockRecorder {
	return m.recorder
}

// SendAcknowledgement mocks base method.
func (m *MockNotifier) SendAcknowledgement(ctx context.Context, messageID, channelID, symbol string) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SendAcknowledgement", ctx, messageID, channelID, symbol)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SendAcknowledgement indicates an expected call of SendAcknowledgement.
func (mr *MockNotifierMockRecorder) SendAcknowledgement(ctx, messageID, channelID, symbol any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendAcknowledgement", reflect.TypeOf((*MockNotifier)(nil).SendAcknowledgement), ctx, messageID, channelID, symbol)
}
