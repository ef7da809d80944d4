package onboarding

import (
	"context"
	"fmt"

	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
	"github.com/nmbr1stnr/tipsandtrim/internal/mapping"
	"github.com/nmbr1stnr/tipsandtrim/internal/metrics"
	"github.com/nmbr1stnr/tipsandtrim/internal/processor"
)

// Outcome records what the correlator did with an event.
type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomeIncomplete   Outcome = "incomplete"
	OutcomeUnmapped     Outcome = "unmapped"
	OutcomeStoreFailed  Outcome = "store_failed"
	OutcomeNotifyFailed Outcome = "notify_failed"
	OutcomeNotified     Outcome = "notified"
)

type CorrelatorOptions struct {
	DashboardURLColumn string
	OnboardedColumn    string
}

// Correlator matches completion events, which only carry the account id,
// back to the originating row and notifies the platform.
//
// Notification is at-most-once and best effort: downstream failures are
// logged and never turned into an error, so the processor does not
// redeliver for problems a redelivery cannot fix.
type Correlator struct {
	parser    processor.EventParser
	processor processor.Processor
	store     mapping.Store
	platform  Platform
	opts      CorrelatorOptions
}

func NewCorrelator(
	parser processor.EventParser,
	p processor.Processor,
	store mapping.Store,
	platform Platform,
	opts CorrelatorOptions,
) *Correlator {
	return &Correlator{
		parser:    parser,
		processor: p,
		store:     store,
		platform:  platform,
		opts:      opts,
	}
}

// HandleEvent processes one webhook delivery. The only error it returns
// is ErrMalformedEvent.
func (c *Correlator) HandleEvent(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	event, err := c.parser.ParseEvent(payload, signature)
	if err != nil {
		logger.Warn("rejecting malformed webhook event", map[string]any{
			"error": err,
		})
		return "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	outcome := c.correlate(ctx, event)
	metrics.WebhookEvents.WithLabelValues(string(outcome)).Inc()

	logger.Info("webhook event handled", map[string]any{
		"event_id":   event.ID,
		"event_type": event.Type,
		"outcome":    string(outcome),
	})

	return outcome, nil
}

func (c *Correlator) correlate(ctx context.Context, event *processor.Event) Outcome {
	// 1. Only account updates matter
	if event.Type != processor.EventAccountUpdated || event.Account == nil {
		return OutcomeIgnored
	}

	acct := event.Account

	// 2. All three flags must be set
	if !acct.Complete() {
		return OutcomeIncomplete
	}

	// 3. Reverse lookup by scanning the forward table
	table, err := c.store.Load(ctx)
	if err != nil {
		logger.Error("loading account mapping failed", map[string]any{
			"account_id": acct.ID,
			"error":      err,
		})
		return OutcomeStoreFailed
	}

	rowID, ok := mapping.FindRowByAccount(table, acct.ID)
	if !ok {
		logger.Warn("no row mapped for account", map[string]any{
			"account_id": acct.ID,
			"event_id":   event.ID,
		})
		return OutcomeUnmapped
	}

	// 4. Dashboard link, then notify the platform
	dashboardURL, err := c.processor.CreateLoginLink(ctx, acct.ID)
	if err != nil {
		logger.Error("dashboard link creation failed", map[string]any{
			"employee_row_id": rowID,
			"account_id":      acct.ID,
			"error":           err,
		})
		return OutcomeNotifyFailed
	}

	err = c.platform.SetColumns(ctx, rowID, map[string]any{
		c.opts.DashboardURLColumn: dashboardURL,
		c.opts.OnboardedColumn:    true,
	})
	metrics.PlatformPushes.WithLabelValues(metrics.PushResult(err)).Inc()
	if err != nil {
		logger.Error("pushing dashboard url to platform failed", map[string]any{
			"employee_row_id": rowID,
			"account_id":      acct.ID,
			"error":           err,
		})
		return OutcomeNotifyFailed
	}

	logger.Info("onboarding completion delivered", map[string]any{
		"employee_row_id": rowID,
		"account_id":      acct.ID,
	})

	return OutcomeNotified
}
