package processor

import (
	"context"
	"errors"
)

// EventAccountUpdated is the only event type the relay acts on.
const EventAccountUpdated = "account.updated"

var ErrInvalidEvent = errors.New("processor: invalid event")

// AccountParams describes the person a connected account is created for.
type AccountParams struct {
	RowID         string
	Email         string
	Name          string
	EmployerEmail string
	Type          string
	BusinessType  string
}

// AccountStatus carries the onboarding flags of a connected account.
type AccountStatus struct {
	ID               string
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
}

// Complete reports whether onboarding has fully finished.
func (a AccountStatus) Complete() bool {
	return a.ChargesEnabled && a.PayoutsEnabled && a.DetailsSubmitted
}

// Event is a normalized webhook notification. Account is set only for
// account events.
type Event struct {
	ID      string
	Type    string
	Account *AccountStatus
}

// Processor is the contract of the payments processor's connected
// account API. Implementations make no decisions about rows or mappings.
type Processor interface {
	// CreateAccount creates a connected account and returns its id.
	CreateAccount(ctx context.Context, params AccountParams) (string, error)

	// CreateOnboardingLink issues a single-use hosted onboarding URL.
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)

	// CreateLoginLink issues a one-time dashboard login URL.
	CreateLoginLink(ctx context.Context, accountID string) (string, error)
}

// EventParser turns a raw webhook delivery into an Event. It returns an
// error wrapping ErrInvalidEvent when the payload cannot be trusted or read.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (*Event, error)
}
