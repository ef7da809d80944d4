package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nmbr1stnr/tipsandtrim/internal/mapping"
	"github.com/nmbr1stnr/tipsandtrim/internal/processor"
)

var testColumns = CorrelatorOptions{
	DashboardURLColumn: "dashboardUrl",
	OnboardedColumn:    "onboarded",
}

type correlatorFixture struct {
	parser   *MockParser
	proc     *MockProcessor
	platform *MockPlatform
	store    *mapping.FileStore
	c        *Correlator
}

func newCorrelatorFixture(t *testing.T) *correlatorFixture {
	t.Helper()
	f := &correlatorFixture{
		parser:   new(MockParser),
		proc:     new(MockProcessor),
		platform: new(MockPlatform),
		store:    newTestStore(t),
	}
	f.c = NewCorrelator(f.parser, f.proc, f.store, f.platform, testColumns)
	return f
}

func (f *correlatorFixture) deliver(ev *processor.Event) {
	f.parser.On("ParseEvent", []byte("payload"), "sig").Return(ev, nil).Once()
}

func accountEvent(id string, charges, payouts, details bool) *processor.Event {
	return &processor.Event{
		ID:   "evt_1",
		Type: processor.EventAccountUpdated,
		Account: &processor.AccountStatus{
			ID:               id,
			ChargesEnabled:   charges,
			PayoutsEnabled:   payouts,
			DetailsSubmitted: details,
		},
	}
}

func TestCorrelator_CompleteEventNotifiesPlatform(t *testing.T) {
	f := newCorrelatorFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, "row-1", "acct_1"))
	require.NoError(t, f.store.Put(ctx, "row-2", "acct_2"))

	f.deliver(accountEvent("acct_2", true, true, true))
	f.proc.On("CreateLoginLink", mock.Anything, "acct_2").Return("https://dash/2", nil)
	f.platform.On("SetColumns", mock.Anything, "row-2", map[string]any{
		"dashboardUrl": "https://dash/2",
		"onboarded":    true,
	}).Return(nil).Once()

	outcome, err := f.c.HandleEvent(ctx, []byte("payload"), "sig")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotified, outcome)
	f.platform.AssertExpectations(t)
}

func TestCorrelator_PartialCompletionDoesNothing(t *testing.T) {
	tests := []struct {
		name                      string
		charges, payouts, details bool
	}{
		{"payouts disabled", true, false, true},
		{"charges disabled", false, true, true},
		{"details not submitted", true, true, false},
		{"nothing", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCorrelatorFixture(t)
			require.NoError(t, f.store.Put(context.Background(), "row-1", "acct_1"))
			f.deliver(accountEvent("acct_1", tt.charges, tt.payouts, tt.details))

			outcome, err := f.c.HandleEvent(context.Background(), []byte("payload"), "sig")
			require.NoError(t, err)
			assert.Equal(t, OutcomeIncomplete, outcome)

			f.proc.AssertNotCalled(t, "CreateLoginLink", mock.Anything, mock.Anything)
			f.platform.AssertNotCalled(t, "SetColumns", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCorrelator_UnmappedAccountWarns(t *testing.T) {
	logs := observeLogs(t)
	f := newCorrelatorFixture(t)
	require.NoError(t, f.store.Put(context.Background(), "row-1", "acct_1"))
	f.deliver(accountEvent("acct_orphan", true, true, true))

	outcome, err := f.c.HandleEvent(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnmapped, outcome)

	f.platform.AssertNotCalled(t, "SetColumns", mock.Anything, mock.Anything, mock.Anything)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("no row mapped for account").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "acct_orphan", warnings[0].ContextMap()["account_id"])
}

func TestCorrelator_OtherEventTypesIgnored(t *testing.T) {
	f := newCorrelatorFixture(t)
	f.deliver(&processor.Event{ID: "evt_9", Type: "payout.paid"})

	outcome, err := f.c.HandleEvent(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	f.proc.AssertNotCalled(t, "CreateLoginLink", mock.Anything, mock.Anything)
}

func TestCorrelator_MalformedEvent(t *testing.T) {
	f := newCorrelatorFixture(t)
	f.parser.On("ParseEvent", []byte("payload"), "sig").
		Return(nil, processor.ErrInvalidEvent)

	_, err := f.c.HandleEvent(context.Background(), []byte("payload"), "sig")
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestCorrelator_PlatformFailureIsSwallowed(t *testing.T) {
	f := newCorrelatorFixture(t)
	require.NoError(t, f.store.Put(context.Background(), "row-1", "acct_1"))
	f.deliver(accountEvent("acct_1", true, true, true))
	f.proc.On("CreateLoginLink", mock.Anything, "acct_1").Return("https://dash/1", nil)
	f.platform.On("SetColumns", mock.Anything, "row-1", mock.Anything).Return(errors.New("glide: 500"))

	outcome, err := f.c.HandleEvent(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotifyFailed, outcome)
}

func TestCorrelator_LoginLinkFailureIsSwallowed(t *testing.T) {
	f := newCorrelatorFixture(t)
	require.NoError(t, f.store.Put(context.Background(), "row-1", "acct_1"))
	f.deliver(accountEvent("acct_1", true, true, true))
	f.proc.On("CreateLoginLink", mock.Anything, "acct_1").Return("", errors.New("stripe: 500"))

	outcome, err := f.c.HandleEvent(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotifyFailed, outcome)
	f.platform.AssertNotCalled(t, "SetColumns", mock.Anything, mock.Anything, mock.Anything)
}

func TestCorrelator_StoreFailureIsAcknowledged(t *testing.T) {
	parser := new(MockParser)
	parser.On("ParseEvent", mock.Anything, mock.Anything).Return(accountEvent("acct_1", true, true, true), nil)
	c := NewCorrelator(parser, new(MockProcessor), failingStore{}, new(MockPlatform), testColumns)

	outcome, err := c.HandleEvent(context.Background(), []byte("payload"), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeStoreFailed, outcome)
}
