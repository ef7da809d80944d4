package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmbr1stnr/tipsandtrim/internal/onboarding"
)

func (h *Handler) createAccount(c *gin.Context) {
	req, err := onboarding.DecodeCreateAccountRequest(c.Request.Body)
	if err != nil {
		writeError(c, err)
		return
	}

	onboardingURL, err := h.accounts.CreateAccount(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"onboarding_url": onboardingURL})
}
