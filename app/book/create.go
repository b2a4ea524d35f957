// Package book contains the listing endpoints: owners create, edit and
// delete their listings, everyone can browse and search them
package book

import (
	"net/http"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"
	"bookswap/exchange-api/pkg/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type createBody struct {
	Title              string `json:"title"`
	Author             string `json:"author"`
	Genre              string `json:"genre"`
	Condition          string `json:"condition"`
	AvailabilityStatus string `json:"availabilityStatus"`
	Description        string `json:"description"`
}

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     validators.ErrTitleEmpty.Error(),
			"requestID": requestID,
		})
		return
	}

	if data.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     validators.ErrAuthorEmpty.Error(),
			"requestID": requestID,
		})
		return
	}

	if data.Genre == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     validators.ErrGenreEmpty.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.ConditionValidator(data.Condition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if data.AvailabilityStatus == "" {
		data.AvailabilityStatus = "Available"
	}

	if err := validators.StatusValidator(data.AvailabilityStatus); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	bookID, err := gonanoid.Generate(charset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate book ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	book := model.Book{
		ID:                 bookID,
		Title:              data.Title,
		Author:             data.Author,
		Genre:              data.Genre,
		Condition:          data.Condition,
		AvailabilityStatus: data.AvailabilityStatus,
		Description:        data.Description,
		OwnerID:            userID,
	}

	if err := d.DB.Omit("Owner").Create(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create book", zap.Error(err), zap.String("requestID", requestID))
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

	c.JSON(http.StatusCreated, book)
}
