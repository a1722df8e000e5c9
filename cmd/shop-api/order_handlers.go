package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/henna-burgund/shop-api/internal/order"
	"github.com/henna-burgund/shop-api/internal/validation"
)

func listOrdersByEmailHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.ListByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
			return
		}
		if len(list) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no orders found for this email"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// listCompletedOrdersHandler backs the admin dashboard, which only shows
// paid orders.
func listCompletedOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.ListByStatus(c.Request.Context(), order.StatusCompleted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
			return
		}
		if list == nil {
			list = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

func updateOrderStatusHandler(repo order.Repository, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		o, err := repo.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "order status updated", "order": o})
		}
	}
}

func deleteOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
