package book

import (
	"net/http"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// List returns every listing, newest first. Public, cached at the
// router.
func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var books []model.Book

	err := d.DB.
		Preload("Owner").
		Order("created_at desc").
		Find(&books).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch books", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, books)
}
