package onboarding

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nmbr1stnr/tipsandtrim/internal/mapping"
	"github.com/nmbr1stnr/tipsandtrim/internal/processor"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateAccount(ctx context.Context, params processor.AccountParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) SetColumns(ctx context.Context, rowID string, columns map[string]any) error {
	args := m.Called(ctx, rowID, columns)
	return args.Error(0)
}

type MockParser struct {
	mock.Mock
}

func (m *MockParser) ParseEvent(payload []byte, signature string) (*processor.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Event), args.Error(1)
}

// failingStore fails every operation with ErrStorageUnavailable.
type failingStore struct{}

func (failingStore) Load(context.Context) (mapping.Mapping, error) {
	return nil, mapping.ErrStorageUnavailable
}

func (failingStore) Put(context.Context, string, string) error {
	return mapping.ErrStorageUnavailable
}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", mapping.ErrStorageUnavailable
}

func newTestStore(t *testing.T) *mapping.FileStore {
	t.Helper()
	return mapping.NewFileStore(filepath.Join(t.TempDir(), "accounts.json"))
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

func forRow(rowID string) any {
	return mock.MatchedBy(func(p processor.AccountParams) bool {
		return p.RowID == rowID
	})
}
