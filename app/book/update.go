package book

import (
	"net/http"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"
	"bookswap/exchange-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateBody struct {
	Title              *string `json:"title,omitempty"`
	Author             *string `json:"author,omitempty"`
	Genre              *string `json:"genre,omitempty"`
	Condition          *string `json:"condition,omitempty"`
	AvailabilityStatus *string `json:"availabilityStatus,omitempty"`
	Description        *string `json:"description,omitempty"`
}

func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	bookID := c.Param("id")
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No book ID provided",
			"requestID": requestID,
		})
		return
	}

	var data updateBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Failed to read JSON body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var book model.Book

	err := d.DB.First(&book, "id = ?", bookID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Book not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch book", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if book.OwnerID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Not authorized to update this book",
			"requestID": requestID,
		})
		return
	}

	if data.Title != nil {
		if *data.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     validators.ErrTitleEmpty.Error(),
				"requestID": requestID,
			})
			return
		}
		book.Title = *data.Title
	}

	if data.Author != nil {
		if *data.Author == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     validators.ErrAuthorEmpty.Error(),
				"requestID": requestID,
			})
			return
		}
		book.Author = *data.Author
	}

	if data.Genre != nil {
		if *data.Genre == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     validators.ErrGenreEmpty.Error(),
				"requestID": requestID,
			})
			return
		}
		book.Genre = *data.Genre
	}

	if data.Condition != nil {
		if err := validators.ConditionValidator(*data.Condition); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		book.Condition = *data.Condition
	}

	if data.AvailabilityStatus != nil {
		if err := validators.StatusValidator(*data.AvailabilityStatus); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		book.AvailabilityStatus = *data.AvailabilityStatus
	}

	if data.Description != nil {
		book.Description = *data.Description
	}

	if err := d.DB.Omit("Owner").Save(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update book", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.DB.Preload("Owner").First(&book, "id = ?", book.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reload book", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, book)
}
