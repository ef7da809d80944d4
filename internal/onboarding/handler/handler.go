package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
	"github.com/nmbr1stnr/tipsandtrim/internal/mapping"
	"github.com/nmbr1stnr/tipsandtrim/internal/onboarding"
)

// Maximum webhook payload size; Stripe events are small.
const maxWebhookPayloadSize = 65536

// Accounts is the onboarding surface the handler drives.
type Accounts interface {
	CreateAccount(ctx context.Context, req onboarding.CreateAccountRequest) (string, error)
	RemediationLink(ctx context.Context, rowID string) (string, error)
}

// Events consumes processor webhook deliveries.
type Events interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (onboarding.Outcome, error)
}

type Handler struct {
	accounts Accounts
	events   Events
}

func NewHandler(accounts Accounts, events Events) *Handler {
	return &Handler{
		accounts: accounts,
		events:   events,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/create-connected-account", h.createAccount)
	r.POST("/webhook", h.webhook)
	r.GET("/get-remediation-link", h.remediationLink)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

// writeError maps domain errors to a status and a generic message.
// Upstream and storage details stay in the logs.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, onboarding.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, onboarding.ErrMalformedBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
	case errors.Is(err, onboarding.ErrMalformedEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
	case errors.Is(err, onboarding.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no account found for row"})
	case errors.Is(err, mapping.ErrStorageUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
