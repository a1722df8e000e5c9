package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/henna-burgund/shop-api/internal/checkout"
	"github.com/henna-burgund/shop-api/internal/config"
	"github.com/henna-burgund/shop-api/internal/httpx"
	"github.com/henna-burgund/shop-api/internal/media"
	"github.com/henna-burgund/shop-api/internal/order"
	"github.com/henna-burgund/shop-api/internal/payment"
	"github.com/henna-burgund/shop-api/internal/product"
	"github.com/henna-burgund/shop-api/internal/review"
	"github.com/henna-burgund/shop-api/internal/validation"
)

// deps groups everything the route table needs so tests can assemble a
// router around stubs.
type deps struct {
	cfg      config.Config
	products product.Repository
	reviews  review.Repository
	orders   order.Repository
	checkout *checkout.Service
	uploader media.Uploader
	validate *validatorv10.Validate
}

func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	orders := order.NewPGRepo(pool)
	payments := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey)

	d := &deps{
		cfg:      cfg,
		products: product.NewPGRepo(pool),
		reviews:  review.NewPGRepo(pool),
		orders:   orders,
		checkout: checkout.NewService(orders, payments,
			cfg.CheckoutBaseURL, cfg.PublishableKey, cfg.SuccessURL, cfg.CancelURL),
		uploader: media.NewClient(cfg.MediaUploadURL, cfg.MediaUploadPreset),
		validate: validation.New(),
	}

	r := setupRouter(d)
	log.Printf("shop-api listening on %s", cfg.ListenAddr)
	log.Fatal(r.Run(cfg.ListenAddr))
}

func setupRouter(d *deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.CORS(d.cfg.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	admin := httpx.AdminOnly(d.cfg.AdminKeyHash)

	api := r.Group("/api")

	orders := api.Group("/orders")
	orders.POST("/create-checkout-session", createCheckoutSessionHandler(d.checkout, d.validate))
	orders.POST("/confirm-payment", confirmPaymentHandler(d.checkout, d.validate))
	orders.GET("", listCompletedOrdersHandler(d.orders))
	orders.GET("/:email", listOrdersByEmailHandler(d.orders))
	orders.GET("/order/:id", getOrderHandler(d.orders))
	orders.PATCH("/update-order-status/:id", admin, updateOrderStatusHandler(d.orders, d.validate))
	orders.DELETE("/delete-order/:id", admin, deleteOrderHandler(d.orders))

	products := api.Group("/products")
	products.POST("/create-product", admin, createProductHandler(d.products, d.cfg.SubcategoryRules, d.validate))
	products.GET("", listProductsHandler(d.products))
	products.GET("/:id", getProductHandler(d.products, d.reviews))
	products.GET("/product/:id", getProductHandler(d.products, d.reviews))
	products.GET("/related/:id", relatedProductsHandler(d.products))
	products.PATCH("/update-product/:id", admin, updateProductHandler(d.products, d.uploader, d.cfg.SubcategoryRules))
	products.DELETE("/:id", admin, deleteProductHandler(d.products, d.reviews))

	reviews := api.Group("/reviews")
	reviews.POST("", createReviewHandler(d.reviews, d.products, d.validate))
	reviews.GET("/:productId", listReviewsHandler(d.reviews))

	r.POST("/uploadImage", uploadImageHandler(d.uploader, d.validate))
	r.POST("/uploadImages", uploadImagesHandler(d.uploader, d.validate))

	return r
}
