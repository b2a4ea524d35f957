package auth

import (
	"fmt"
	"net/http"
	"time"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"
	"bookswap/exchange-api/pkg/security"
	"bookswap/exchange-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The same message goes out whether the address is registered or not,
// so the endpoint leaks nothing about which emails exist.
const forgotPasswordMsg = "If an account exists with this email, you will receive password reset instructions."

type forgotPasswordBody struct {
	Email string `json:"email"`
}

func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := d.DB.Where("email = ?", validators.NormalizeEmail(data.Email)).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{
				"message":   forgotPasswordMsg,
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	plaintext, hash, err := security.MakeResetToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	expiresAt := time.Now().Add(security.ResetTokenTTL)
	user.ResetTokenHash = &hash
	user.ResetTokenExpiresAt = &expiresAt

	if err := d.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to persist reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resetLink := fmt.Sprintf("%v/reset-password/%v", viper.GetString("host.frontend_url"), plaintext)

	if err := d.Mailer.SendPasswordReset(user.Email, resetLink); err != nil {
		// Don't leave a token dangling that the user can never
		// receive
		user.ResetTokenHash = nil
		user.ResetTokenExpiresAt = nil

		if saveErr := d.DB.Save(&user).Error; saveErr != nil {
			zap.L().Error("Failed to roll back reset token", zap.Error(saveErr), zap.String("requestID", requestID))
		}

		// This branch is a confirmed broken state, so unlike the
		// unknown-email case it surfaces a hard error
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "An error occurred while processing your request",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send reset mail", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   forgotPasswordMsg,
		"requestID": requestID,
	})
}
