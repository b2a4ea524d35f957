package auth

import (
	"net/http"
	"time"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"
	"bookswap/exchange-api/pkg/security"
	"bookswap/exchange-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resetPasswordBody struct {
	Password string `json:"password"`
}

func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	tokenStr := c.Param("resettoken")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No reset token provided",
			"requestID": requestID,
		})
		return
	}

	var data resetPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	// Only the hash was ever persisted, so look the token up by the
	// same transform it was issued with
	hash := security.HashResetToken(tokenStr)

	var user model.User

	err := d.DB.
		Where("reset_token_hash = ? AND reset_token_expires_at > ?", hash, time.Now()).
		First(&user).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired reset token",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	newHash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Clearing both fields is what makes the token single-use
	user.PasswordHash = newHash
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil

	if err := d.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to persist new password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// No session token here. The user logs in with the new password
	c.JSON(http.StatusOK, gin.H{
		"message":   "Password has been reset successfully",
		"requestID": requestID,
	})
}
