package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmbr1stnr/tipsandtrim/internal/onboarding"
)

func (h *Handler) webhook(c *gin.Context) {
	// the raw body is needed for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", onboarding.ErrMalformedEvent, err))
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	if _, err := h.events.HandleEvent(
		c.Request.Context(),
		payload,
		c.GetHeader("Stripe-Signature"),
	); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
