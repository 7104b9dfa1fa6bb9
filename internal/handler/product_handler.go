package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"boardmart/internal/middleware"
	"boardmart/internal/models"
	"boardmart/internal/repository"
	"boardmart/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productRepo *repository.ProductRepository
	images      cloudinary.Client
}

func NewProductHandler(productRepo *repository.ProductRepository, images cloudinary.Client) *ProductHandler {
	return &ProductHandler{productRepo: productRepo, images: images}
}

// List returns the catalog, optionally filtered by ?category=.
func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	list, total, err := h.productRepo.List(c.Query("category"), limit, offset)
	if err != nil {
		respondErr(c, "product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list, "total": total})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	p, err := h.productRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (h *ProductHandler) ListReviews(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	limit, offset := pagination(c)
	reviews, err := h.productRepo.ListReviews(uint(id), limit, offset)
	if err != nil {
		respondErr(c, "product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// CreateReview stores one review per product per user; a second attempt hits
// the unique index and comes back as a conflict.
func (h *ProductHandler) CreateReview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.productRepo.GetByID(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	rev := &models.Review{
		ProductID: uint(id),
		UserID:    middleware.GetUserID(c),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.productRepo.CreateReview(rev); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "you have already reviewed this product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": rev})
}

type ProductRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	PriceKobo   int64  `json:"price_kobo" binding:"required,min=1"`
	Category    string `json:"category" binding:"max=50"`
	ImageURL    string `json:"image_url"`
	Stock       int    `json:"stock" binding:"min=0"`
	IsActive    *bool  `json:"is_active"`
}

// Create adds a catalog product (admin only).
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceKobo:   req.PriceKobo,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.productRepo.Create(p); err != nil {
		respondErr(c, "product", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

// Update replaces the editable fields of a product (admin only).
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	p, err := h.productRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.Name = req.Name
	p.Description = req.Description
	p.PriceKobo = req.PriceKobo
	p.Category = req.Category
	if req.ImageURL != "" {
		p.ImageURL = req.ImageURL
	}
	p.Stock = req.Stock
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.productRepo.Update(p); err != nil {
		respondErr(c, "product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// Delete soft-deletes a product (admin only). Existing order snapshots keep
// their copied name and price.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	if err := h.productRepo.Delete(uint(id)); err != nil {
		respondErr(c, "product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// UploadImage pushes a multipart image to Cloudinary and returns the
// delivery URLs (admin only).
func (h *ProductHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads not configured"})
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
		return
	}
	defer f.Close()

	publicID := fmt.Sprintf("product_%d", time.Now().UnixNano())
	url, thumb, err := h.images.UploadImage(c.Request.Context(), f, "products", publicID)
	if err != nil {
		log.Printf("[product] image upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image_url": url, "thumbnail_url": thumb})
}
