package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/plsp-store/backend/internal/catalog"
)

func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.ListCategories(c.Request.Context(), true)
		if err != nil {
			log.Error().Err(err).Msg("list categories failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if cats == nil {
			cats = []catalog.Category{}
		}
		c.JSON(http.StatusOK, cats)
	}
}

// CreateCategoryRequest payload for POST /categories.
type CreateCategoryRequest struct {
	Name        string  `json:"name"        example:"School Supplies"`
	Description *string `json:"description"`
}

func createCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Category name is required"})
			return
		}
		cat := catalog.Category{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			IsActive:    true,
		}
		if err := repo.CreateCategory(c.Request.Context(), &cat); err != nil {
			log.Error().Err(err).Msg("create category failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// UpdateCategoryRequest payload for PUT /categories/:id. Omitted fields keep
// their stored values; isActive=false soft-deletes the category.
type UpdateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func updateCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
			return
		}
		err := repo.UpdateCategory(c.Request.Context(), c.Param("id"), catalog.CategoryUpdate{
			Name:        req.Name,
			Description: req.Description,
			IsActive:    req.IsActive,
		})
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
				return
			}
			log.Error().Err(err).Msg("update category failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	}
}

func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repo.ListProducts(c.Request.Context(), catalog.ProductQuery{
			CategoryID: c.Query("categoryId"),
			Q:          c.Query("search"),
			ActiveOnly: true,
		})
		if err != nil {
			log.Error().Err(err).Msg("list products failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if products == nil {
			products = []catalog.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

func adminListProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repo.ListProducts(c.Request.Context(), catalog.ProductQuery{
			CategoryID: c.Query("categoryId"),
			Q:          c.Query("search"),
			ActiveOnly: false,
		})
		if err != nil {
			log.Error().Err(err).Msg("admin list products failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if products == nil {
			products = []catalog.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

// VariantPayload is one variant row in a product create/update request.
type VariantPayload struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	SKU   string           `json:"sku"`
	Price *decimal.Decimal `json:"price"`
	Stock int              `json:"stock"`
}

// CreateProductRequest payload for POST /products/admin.
type CreateProductRequest struct {
	Name        string           `json:"name"        example:"PLSP Hoodie"`
	Description string           `json:"description"`
	BasePrice   *decimal.Decimal `json:"basePrice"   example:"1200.00"`
	CategoryID  string           `json:"categoryId"`
	Variants    []VariantPayload `json:"variants"`
}

func toVariants(productID string, payload []VariantPayload) []catalog.Variant {
	out := make([]catalog.Variant, 0, len(payload))
	for _, v := range payload {
		id := v.ID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, catalog.Variant{
			ID:        id,
			ProductID: productID,
			Name:      v.Name,
			SKU:       v.SKU,
			Price:     v.Price,
			Stock:     v.Stock,
		})
	}
	return out
}

func createProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
			return
		}
		if req.Name == "" || req.CategoryID == "" || req.BasePrice == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name, basePrice and categoryId are required"})
			return
		}
		if req.BasePrice.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "basePrice must not be negative"})
			return
		}
		p := catalog.Product{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			BasePrice:   *req.BasePrice,
			IsActive:    true,
			CategoryID:  req.CategoryID,
		}
		variants := toVariants(p.ID, req.Variants)
		if err := repo.CreateProduct(c.Request.Context(), &p, variants); err != nil {
			log.Error().Err(err).Msg("create product failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		p.Variants = variants
		c.JSON(http.StatusCreated, p)
	}
}

// UpdateProductRequest payload for PUT /products/admin/:id. The variant list
// replaces the stored set in the same transaction as the product row; rows
// missing from it are removed unless an order item references them.
type UpdateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	BasePrice   *decimal.Decimal `json:"basePrice"`
	IsActive    *bool            `json:"isActive"`
	CategoryID  string           `json:"categoryId"`
	Variants    []VariantPayload `json:"variants"`
}

func updateProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
			return
		}
		if req.BasePrice != nil && req.BasePrice.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "basePrice must not be negative"})
			return
		}
		id := c.Param("id")
		// omitted variants field leaves the stored variants alone; a present
		// batch replaces them wholesale
		var variants []catalog.Variant
		if req.Variants != nil {
			variants = toVariants(id, req.Variants)
		}
		err := repo.UpdateProduct(c.Request.Context(), id, catalog.ProductUpdate{
			Name:        req.Name,
			Description: req.Description,
			BasePrice:   req.BasePrice,
			IsActive:    req.IsActive,
			CategoryID:  req.CategoryID,
		}, variants)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
				return
			}
			log.Error().Err(err).Msg("update product failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func deleteProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := repo.DeactivateProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
				return
			}
			log.Error().Err(err).Msg("deactivate product failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
