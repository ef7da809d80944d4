package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) remediationLink(c *gin.Context) {
	rowID := c.Query("employee_row_id")

	link, err := h.accounts.RemediationLink(c.Request.Context(), rowID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employee_row_id": rowID,
		"remediation_url": link,
	})
}
