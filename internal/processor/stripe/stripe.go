package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
	"github.com/nmbr1stnr/tipsandtrim/internal/processor"
)

const (
	defaultAccountType  = "express"
	defaultBusinessType = "individual"
	onboardingLinkType  = "account_onboarding"
)

type Config struct {
	SecretKey     string
	APIVersion    string
	WebhookSecret string
	Country       string
	StorefrontURL string
	RefreshURL    string
	ReturnURL     string
	Timeout       time.Duration

	// BaseURL overrides the Stripe API endpoint.
	BaseURL string
}

// Provider implements processor.Processor and processor.EventParser
// against Stripe Connect.
type Provider struct {
	cfg Config
	api *client.API
}

func New(cfg Config) *Provider {
	if cfg.SecretKey == "" {
		logger.Warn("stripe secret key missing; calls will fail", nil)
	}
	if cfg.WebhookSecret == "" {
		logger.Warn("stripe webhook secret missing; events are not verified", nil)
	}
	if cfg.APIVersion != "" && cfg.APIVersion != stripe.APIVersion {
		logger.Warn("configured stripe api version differs from client version", map[string]any{
			"configured": cfg.APIVersion,
			"client":     stripe.APIVersion,
		})
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     logger.L().Sugar(),
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &Provider{
		cfg: cfg,
		api: client.New(cfg.SecretKey, &stripe.Backends{
			API:     backend,
			Connect: backend,
			Uploads: backend,
		}),
	}
}

func (p *Provider) CreateAccount(ctx context.Context, in processor.AccountParams) (string, error) {
	accountType := in.Type
	if accountType == "" {
		accountType = defaultAccountType
	}
	businessType := in.BusinessType
	if businessType == "" {
		businessType = defaultBusinessType
	}

	params := &stripe.AccountParams{
		Type:         stripe.String(accountType),
		Country:      stripe.String(p.cfg.Country),
		Email:        stripe.String(in.Email),
		BusinessType: stripe.String(businessType),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	params.Context = ctx

	if p.cfg.StorefrontURL != "" {
		params.BusinessProfile = &stripe.AccountBusinessProfileParams{
			URL: stripe.String(p.cfg.StorefrontURL),
		}
	}

	params.AddMetadata("employee_row_id", in.RowID)
	if in.Name != "" {
		params.AddMetadata("name", in.Name)
	}
	if in.EmployerEmail != "" {
		params.AddMetadata("employer_email", in.EmployerEmail)
	}

	acct, err := p.api.Accounts.New(params)
	if err != nil {
		logAPIError("create account", err)
		return "", fmt.Errorf("stripe: create account failed: %w", err)
	}

	return acct.ID, nil
}

func (p *Provider) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(p.cfg.RefreshURL),
		ReturnURL:  stripe.String(p.cfg.ReturnURL),
		Type:       stripe.String(onboardingLinkType),
	}
	params.Context = ctx

	link, err := p.api.AccountLinks.New(params)
	if err != nil {
		logAPIError("create account link", err)
		return "", fmt.Errorf("stripe: create account link failed: %w", err)
	}

	return link.URL, nil
}

func (p *Provider) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	}
	params.Context = ctx

	link, err := p.api.LoginLinks.New(params)
	if err != nil {
		logAPIError("create login link", err)
		return "", fmt.Errorf("stripe: create login link failed: %w", err)
	}

	return link.URL, nil
}

// ParseEvent verifies the Stripe-Signature header when a webhook secret
// is configured and decodes the event otherwise.
func (p *Provider) ParseEvent(payload []byte, signature string) (*processor.Event, error) {
	var (
		event stripe.Event
		err   error
	)

	if p.cfg.WebhookSecret != "" {
		event, err = webhook.ConstructEventWithOptions(
			payload,
			signature,
			p.cfg.WebhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", processor.ErrInvalidEvent, err)
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrInvalidEvent, err)
	}

	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", processor.ErrInvalidEvent)
	}

	out := &processor.Event{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if out.Type != processor.EventAccountUpdated {
		return out, nil
	}

	acct, err := decodeAccount(event.Data)
	if err != nil {
		return nil, err
	}
	out.Account = acct

	return out, nil
}

func decodeAccount(data *stripe.EventData) (*processor.AccountStatus, error) {
	if data == nil || len(data.Raw) == 0 {
		return nil, fmt.Errorf("%w: missing data.object", processor.ErrInvalidEvent)
	}

	var acct stripe.Account
	if err := json.Unmarshal(data.Raw, &acct); err != nil {
		return nil, fmt.Errorf("%w: data.object is not an account: %v", processor.ErrInvalidEvent, err)
	}
	if acct.ID == "" {
		return nil, fmt.Errorf("%w: account id missing", processor.ErrInvalidEvent)
	}

	return &processor.AccountStatus{
		ID:               acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}, nil
}

func logAPIError(op string, err error) {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return
	}
	logger.Error("stripe api error", map[string]any{
		"op":          op,
		"status":      se.HTTPStatusCode,
		"type":        string(se.Type),
		"code":        string(se.Code),
		"request_id":  se.RequestID,
		"description": se.Msg,
	})
}
