package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

type PromoController struct {
	DB *gorm.DB
}

func NewPromoController(db *gorm.DB) *PromoController {
	return &PromoController{DB: db}
}

// GetAllPromos -> daftar promo; ?active=true hanya yang berlaku sekarang
func (pc *PromoController) GetAllPromos(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	query := pc.DB.Where("store_id = ?", storeID)
	if c.Query("active") == "true" {
		now := time.Now()
		query = query.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now)
	}

	var promos []models.Promo
	if err := query.Find(&promos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of promos", promos)
}

// CreatePromo -> buat promo baru
func (pc *PromoController) CreatePromo(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	var req struct {
		Name      string    `json:"name" binding:"required"`
		Type      string    `json:"type" binding:"required"` // percent, fixed
		Value     float64   `json:"value" binding:"required"`
		StartDate time.Time `json:"start_date" binding:"required"`
		EndDate   time.Time `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Type != "percent" && req.Type != "fixed" {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("promo type must be percent or fixed"))
		return
	}
	if req.EndDate.Before(req.StartDate) {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("end_date before start_date"))
		return
	}

	promo := models.Promo{
		StoreID:   storeID,
		Name:      req.Name,
		Type:      req.Type,
		Value:     req.Value,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,
	}
	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Promo created", promo)
}

// UpdatePromo -> ubah promo (termasuk aktif/nonaktif)
func (pc *PromoController) UpdatePromo(c *gin.Context) {
	promoID := c.Param("promo_id")

	var promo models.Promo
	if err := pc.DB.First(&promo, promoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name      *string    `json:"name"`
		Value     *float64   `json:"value"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
		IsActive  *bool      `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		promo.Name = *req.Name
	}
	if req.Value != nil {
		promo.Value = *req.Value
	}
	if req.StartDate != nil {
		promo.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		promo.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}

	if err := pc.DB.Save(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Promo updated", promo)
}

// DeletePromo -> hapus promo
func (pc *PromoController) DeletePromo(c *gin.Context) {
	promoID := c.Param("promo_id")

	if err := pc.DB.Delete(&models.Promo{}, promoID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Promo deleted", nil)
}
