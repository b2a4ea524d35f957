package book

import (
	"net/http"
	"strconv"
	"strings"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"
	"bookswap/exchange-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxSearchLimit = 100

// Search filters listings by title/author substring and exact
// genre/availability, with page/limit pagination. Pages start at 1.
func Search(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid page provided",
			"requestID": requestID,
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "9"))
	if err != nil || limit < 1 || limit > maxSearchLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid limit provided",
			"requestID": requestID,
		})
		return
	}

	q := d.DB.Model(model.Book{})

	if title := c.Query("title"); title != "" {
		q = q.Where("lower(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	if author := c.Query("author"); author != "" {
		q = q.Where("lower(author) LIKE ?", "%"+strings.ToLower(author)+"%")
	}

	if genre := c.Query("genre"); genre != "" {
		q = q.Where("genre = ?", genre)
	}

	if status := c.Query("availabilityStatus"); status != "" {
		if err := validators.StatusValidator(status); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		q = q.Where("availability_status = ?", status)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count search results", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var books []model.Book

	err = q.
		Preload("Owner").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&books).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to search books", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	totalPages := count / int64(limit)
	if count%int64(limit) != 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{
		"books":       books,
		"totalPages":  totalPages,
		"currentPage": page,
		"totalBooks":  count,
	})
}
