package root

import (
	"net/http"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/mail"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MailCheck verifies the SMTP configuration by dialing the server.
// Only available when the configured mailer actually is SMTP-backed.
func MailCheck(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	s, ok := d.Mailer.(*mail.SMTPMailer)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":     "Mailer does not support config checks",
			"requestID": requestID,
		})
		return
	}

	if err := s.VerifyConfig(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Email configuration error",
			"requestID": requestID,
		})

		zap.L().Error("SMTP config check failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email configuration is working correctly",
		"requestID": requestID,
	})
}
