package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/kds"
	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

// GetAllProducts -> daftar produk per toko, opsional filter kategori dan
// flag low_stock (stok di bawah ambang, termasuk stok negatif karena oversell)
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	query := pc.DB.Preload("Category").Where("store_id = ?", storeID)

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("low_stock") == "true" {
		threshold := 5
		if raw := c.Query("threshold"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				threshold = parsed
			}
		}
		query = query.Where("stock <= ?", threshold)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// GetProductByID -> detail satu produk
func (pc *ProductController) GetProductByID(c *gin.Context) {
	productID := c.Param("product_id")

	var product models.Product
	if err := pc.DB.Preload("Category").First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// CreateProduct -> buat produk; SKU harus unik per toko
func (pc *ProductController) CreateProduct(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	var req struct {
		CategoryID  uint    `json:"category_id" binding:"required"`
		SKU         string  `json:"sku" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		Stock       int     `json:"stock"`
		Description string  `json:"description"`
		ImageUrl    *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	pc.DB.Model(&models.Product{}).
		Where("store_id = ? AND sku = ?", storeID, req.SKU).
		Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, utils.ConflictErrorf("SKU %s already exists", req.SKU))
		return
	}

	product := models.Product{
		StoreID:     storeID,
		CategoryID:  req.CategoryID,
		SKU:         req.SKU,
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageUrl:    req.ImageUrl,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct -> ubah data produk
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	productID := c.Param("product_id")

	var product models.Product
	if err := pc.DB.First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		CategoryID  *uint    `json:"category_id"`
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
		ImageUrl    *string  `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ImageUrl != nil {
		product.ImageUrl = req.ImageUrl
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// AdjustStock -> koreksi stok manual (stock opname, barang rusak)
func (pc *ProductController) AdjustStock(c *gin.Context) {
	productID := c.Param("product_id")

	var product models.Product
	if err := pc.DB.First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := pc.DB.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("stock", gorm.Expr("stock + ?", req.Delta)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pc.DB.First(&product, product.ID)
	kds.BroadcastStockUpdate(product)

	utils.RespondJSON(c, http.StatusOK, "Stock adjusted", product)
}

// DeleteProduct -> hapus produk
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	productID := c.Param("product_id")

	if err := pc.DB.Delete(&models.Product{}, productID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product deleted", nil)
}
