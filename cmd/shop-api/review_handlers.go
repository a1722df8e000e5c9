package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/henna-burgund/shop-api/internal/product"
	"github.com/henna-burgund/shop-api/internal/review"
	"github.com/henna-burgund/shop-api/internal/validation"
)

func createReviewHandler(reviews review.Repository, products product.Repository, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req review.CreateReviewRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		// Reviews must point at a live product.
		if _, err := products.GetByID(c.Request.Context(), req.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
			return
		}

		rv := &review.Review{
			ID:        uuid.NewString(),
			ProductID: req.ProductID,
			UserID:    req.UserID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := reviews.Create(c.Request.Context(), rv); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "review created", "review": rv})
	}
}

func listReviewsHandler(reviews review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := reviews.ListByProduct(c.Request.Context(), c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
			return
		}
		if list == nil {
			list = []review.Review{}
		}
		c.JSON(http.StatusOK, gin.H{"reviews": list})
	}
}
