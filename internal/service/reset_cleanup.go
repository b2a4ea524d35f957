// Package service contains background jobs that run alongside the API
package service

import (
	"time"

	"bookswap/exchange-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResetTokenCleanup periodically clears reset token fields whose
// expiry has passed. Lookups already filter on the expiry column, so
// this is housekeeping rather than correctness, it just keeps stale
// hashes from sitting in the table forever.
func ResetTokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Reset token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			r := db.
				Model(model.User{}).
				Where("reset_token_expires_at IS NOT NULL AND reset_token_expires_at < ?", time.Now()).
				Updates(map[string]any{
					"reset_token_hash":       nil,
					"reset_token_expires_at": nil,
				})
			if r.Error != nil {
				zap.L().Error("Failed to clean up expired reset tokens", zap.Error(r.Error))
				continue
			}

			if r.RowsAffected > 0 {
				zap.L().Debug("Cleared expired reset tokens", zap.Int64("count", r.RowsAffected))
			}
		}
	}()
}
