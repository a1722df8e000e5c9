package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/henna-burgund/shop-api/internal/checkout"
	"github.com/henna-burgund/shop-api/internal/order"
	"github.com/henna-burgund/shop-api/internal/payment"
	"github.com/henna-burgund/shop-api/internal/validation"
)

func createCheckoutSessionHandler(svc *checkout.Service, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res, err := svc.CreateSession(c.Request.Context(), &req)
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to create checkout session",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func confirmPaymentHandler(svc *checkout.Service, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.ConfirmPaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		o, err := svc.ConfirmPayment(c.Request.Context(), req.ClientReferenceID)
		switch {
		case errors.Is(err, checkout.ErrMissingReference):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, payment.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment session not found"})
		case errors.Is(err, checkout.ErrPaymentNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment not successful"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to confirm payment",
				"details": err.Error(),
			})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "payment confirmed", "order": o})
		}
	}
}
