package book

import (
	"net/http"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserBooks returns the listings owned by the user in the path,
// newest first.
func UserBooks(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	ownerID := c.Param("userId")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No user ID provided",
			"requestID": requestID,
		})
		return
	}

	var books []model.Book

	err := d.DB.
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&books).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user books", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, books)
}
