package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/henna-burgund/shop-api/internal/media"
	"github.com/henna-burgund/shop-api/internal/validation"
)

type uploadImageRequest struct {
	Image string `json:"image" validate:"required"`
}

type uploadImagesRequest struct {
	Images []string `json:"images" validate:"required,min=1,dive,required"`
}

func uploadImageHandler(uploader media.Uploader, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req uploadImageRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		u, err := uploader.Upload(c.Request.Context(), req.Image)
		if errors.Is(err, media.ErrNoImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": u})
	}
}

func uploadImagesHandler(uploader media.Uploader, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req uploadImagesRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		urls, err := uploader.UploadAll(c.Request.Context(), req.Images)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"urls": urls})
	}
}
