package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

// GetAllCategories -> daftar kategori produk per toko
func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	var categories []models.Category
	if err := cc.DB.Where("store_id = ?", storeID).Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// CreateCategory -> buat kategori baru
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.Category{
		StoreID: storeID,
		Name:    req.Name,
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory -> ubah nama kategori
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	categoryID := c.Param("category_id")

	var category models.Category
	if err := cc.DB.First(&category, categoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category.Name = req.Name
	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> hapus kategori
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	categoryID := c.Param("category_id")

	if err := cc.DB.Delete(&models.Category{}, categoryID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
