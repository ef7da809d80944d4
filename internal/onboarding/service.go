package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
	"github.com/nmbr1stnr/tipsandtrim/internal/mapping"
	"github.com/nmbr1stnr/tipsandtrim/internal/metrics"
	"github.com/nmbr1stnr/tipsandtrim/internal/processor"
)

// Platform writes column values into a row of the app platform.
type Platform interface {
	SetColumns(ctx context.Context, rowID string, columns map[string]any) error
}

type ServiceOptions struct {
	// PushOnCreate also writes the onboarding URL to the row before
	// returning it.
	PushOnCreate        bool
	OnboardingURLColumn string
}

// Service creates connected accounts and issues onboarding links for rows.
type Service struct {
	processor processor.Processor
	store     mapping.Store
	platform  Platform
	opts      ServiceOptions
}

func NewService(
	p processor.Processor,
	store mapping.Store,
	platform Platform,
	opts ServiceOptions,
) *Service {
	return &Service{
		processor: p,
		store:     store,
		platform:  platform,
		opts:      opts,
	}
}

// CreateAccount creates an account for the row, records the mapping and
// returns an onboarding URL. The steps are not transactional: a failure
// after account creation leaves the account (and possibly the mapping) behind.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	// 1. Create the connected account
	accountID, err := s.processor.CreateAccount(ctx, processor.AccountParams{
		RowID:         req.RowID,
		Email:         req.Email,
		Name:          req.Name,
		EmployerEmail: req.EmployerEmail,
		Type:          req.Type,
		BusinessType:  req.BusinessType,
	})
	if err != nil {
		logger.Error("account creation failed", map[string]any{
			"employee_row_id": req.RowID,
			"error":           err,
		})
		return "", fmt.Errorf("%w: create account", ErrUpstreamFailure)
	}

	// 2. Record row -> account, replacing any earlier account
	if err := s.store.Put(ctx, req.RowID, accountID); err != nil {
		logger.Error("persisting account mapping failed", map[string]any{
			"employee_row_id": req.RowID,
			"account_id":      accountID,
			"error":           err,
		})
		return "", storageErr(err)
	}

	metrics.AccountsCreated.Inc()
	logger.Info("connected account created", map[string]any{
		"employee_row_id": req.RowID,
		"account_id":      accountID,
	})

	// 3. Issue the onboarding link
	onboardingURL, err := s.processor.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		logger.Error("onboarding link creation failed", map[string]any{
			"employee_row_id": req.RowID,
			"account_id":      accountID,
			"error":           err,
		})
		return "", fmt.Errorf("%w: create onboarding link", ErrUpstreamFailure)
	}

	// 4. Optionally hand the link to the platform row directly
	if s.opts.PushOnCreate {
		err := s.platform.SetColumns(ctx, req.RowID, map[string]any{
			s.opts.OnboardingURLColumn: onboardingURL,
		})
		metrics.PlatformPushes.WithLabelValues(metrics.PushResult(err)).Inc()
		if err != nil {
			logger.Error("pushing onboarding url to platform failed", map[string]any{
				"employee_row_id": req.RowID,
				"account_id":      accountID,
				"error":           err,
			})
			return "", fmt.Errorf("%w: platform push", ErrUpstreamFailure)
		}
	}

	return onboardingURL, nil
}

// RemediationLink issues a fresh onboarding link for the account already
// mapped to rowID. It never creates an account.
func (s *Service) RemediationLink(ctx context.Context, rowID string) (string, error) {
	if rowID == "" {
		return "", fmt.Errorf("%w: employee_row_id", ErrMissingField)
	}

	accountID, err := s.store.Get(ctx, rowID)
	if errors.Is(err, mapping.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		logger.Error("loading account mapping failed", map[string]any{
			"employee_row_id": rowID,
			"error":           err,
		})
		return "", storageErr(err)
	}

	link, err := s.processor.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		logger.Error("remediation link creation failed", map[string]any{
			"employee_row_id": rowID,
			"account_id":      accountID,
			"error":           err,
		})
		return "", fmt.Errorf("%w: create onboarding link", ErrUpstreamFailure)
	}

	return link, nil
}

// storageErr keeps mapping.ErrStorageUnavailable matchable for callers.
func storageErr(err error) error {
	if errors.Is(err, mapping.ErrStorageUnavailable) {
		return mapping.ErrStorageUnavailable
	}
	return fmt.Errorf("%w: %v", mapping.ErrStorageUnavailable, err)
}
