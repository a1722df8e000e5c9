package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henna-burgund/shop-api/internal/media"
	"github.com/henna-burgund/shop-api/internal/product"
	"github.com/henna-burgund/shop-api/internal/review"
	"github.com/henna-burgund/shop-api/internal/validation"
)

func formatPrice(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func createProductHandler(repo product.Repository, rules map[string][]string, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if err := product.ValidateSubcategory(rules, req.Category, req.Subcategory); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		oldPrice := ""
		if req.OldPrice > 0 {
			oldPrice = formatPrice(req.OldPrice)
		}
		p := &product.Product{
			ID:          uuid.NewString(),
			Name:        product.DisplayName(rules, req.Name, req.Category, req.Subcategory),
			Category:    req.Category,
			Subcategory: req.Subcategory,
			Description: req.Description,
			Price:       formatPrice(req.Price),
			OldPrice:    oldPrice,
			Images:      req.Images,
			AuthorID:    req.Author,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "product created", "product": p})
	}
}

func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit <= 0 || limit > 100 {
			limit = 10
		}

		for _, k := range []string{"minPrice", "maxPrice"} {
			if v := c.Query(k); v != "" {
				if _, err := decimal.NewFromString(v); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + k})
					return
				}
			}
		}

		q := product.Query{
			Category:    c.Query("category"),
			Subcategory: c.Query("subcategory"),
			MinPrice:    c.Query("minPrice"),
			MaxPrice:    c.Query("maxPrice"),
			Page:        page,
			Limit:       limit,
		}
		list, total, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
			return
		}
		if list == nil {
			list = []product.Product{}
		}
		c.JSON(http.StatusOK, product.ListResponse{
			Products:      list,
			TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
			TotalProducts: total,
		})
	}
}

func getProductHandler(repo product.Repository, reviews review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
			return
		}

		rvs, err := reviews.ListByProduct(c.Request.Context(), p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reviews"})
			return
		}
		if rvs == nil {
			rvs = []review.Review{}
		}
		c.JSON(http.StatusOK, gin.H{"product": p, "reviews": rvs})
	}
}

// updateProductHandler accepts a multipart form: scalar fields, an
// existingImages JSON array of already-hosted URLs, and zero or more new
// image files that get pushed to the media host first.
func updateProductHandler(repo product.Repository, uploader media.Uploader, rules map[string][]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		}
		field := func(k string) string {
			if vs := form.Value[k]; len(vs) > 0 {
				return vs[0]
			}
			return ""
		}

		current, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
			return
		}

		category := field("category")
		if category == "" {
			category = current.Category
		}
		subcategory := field("subcategory")
		if subcategory == "" {
			subcategory = current.Subcategory
		}
		if err := product.ValidateSubcategory(rules, category, subcategory); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		price := field("price")
		updatePrice := price != ""
		if updatePrice {
			if _, err := decimal.NewFromString(price); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
		}
		oldPrice := field("oldPrice")
		if oldPrice != "" {
			if _, err := decimal.NewFromString(oldPrice); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oldPrice"})
				return
			}
		}

		var images []string
		if raw := field("existingImages"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &images); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid existingImages"})
				return
			}
		}

		var encoded []string
		for _, fh := range form.File["image"] {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
				return
			}
			encoded = append(encoded, "data:"+fh.Header.Get("Content-Type")+";base64,"+
				base64.StdEncoding.EncodeToString(data))
		}
		if len(encoded) > 0 {
			urls, err := uploader.UploadAll(c.Request.Context(), encoded)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
				return
			}
			images = append(images, urls...)
		}
		if len(images) == 0 && len(form.Value["existingImages"]) > 0 {
			// Caller explicitly cleared the gallery without replacements.
			c.JSON(http.StatusBadRequest, gin.H{"error": product.ErrNoImages.Error()})
			return
		}

		p := &product.Product{
			ID:          current.ID,
			Name:        field("name"),
			Category:    field("category"),
			Subcategory: subcategory,
			Description: field("description"),
			Price:       price,
			OldPrice:    oldPrice,
			Images:      images,
		}
		if err := repo.Update(c.Request.Context(), p, updatePrice); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

// deleteProductHandler removes the product and cascades to its reviews.
func deleteProductHandler(repo product.Repository, reviews review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ok, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		deleted, err := reviews.DeleteByProduct(c.Request.Context(), id)
		if err != nil {
			log.Printf("[products] delete %s: review cleanup failed: %v", id, err)
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted", "reviewsDeleted": deleted})
	}
}

func relatedProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.Related(c.Request.Context(), c.Param("id"))
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list related products"})
			return
		}
		if list == nil {
			list = []product.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": list})
	}
}
