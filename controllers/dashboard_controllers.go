package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/kds"
	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetDashboardStats mengambil statistik untuk dashboard owner
func (dc *DashboardController) GetDashboardStats(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	today := time.Now().Format("2006-01-02")
	dayStart, _ := time.ParseInLocation("2006-01-02", today, time.Local)
	dayEnd := dayStart.Add(24 * time.Hour)

	var stats struct {
		TotalTransactions int64   `json:"total_transactions"`
		TodayTransactions int64   `json:"today_transactions"`
		TotalRevenue      float64 `json:"total_revenue"`
		TodayRevenue      float64 `json:"today_revenue"`
		TodayExpenses     float64 `json:"today_expenses"`
		SyncedOffline     int64   `json:"synced_offline_today"`
		TopProducts       []struct {
			ProductID uint    `json:"product_id"`
			Name      string  `json:"name"`
			Quantity  int     `json:"quantity"`
			Revenue   float64 `json:"revenue"`
		} `json:"top_products"`
		LowStock []models.Product `json:"low_stock"`
	}

	dc.DB.Model(&models.Transaction{}).Where("store_id = ?", storeID).Count(&stats.TotalTransactions)
	dc.DB.Model(&models.Transaction{}).
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, dayStart, dayEnd).
		Count(&stats.TodayTransactions)

	dc.DB.Model(&models.Transaction{}).Where("store_id = ?", storeID).
		Select("COALESCE(SUM(total), 0)").Row().Scan(&stats.TotalRevenue)
	dc.DB.Model(&models.Transaction{}).
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, dayStart, dayEnd).
		Select("COALESCE(SUM(total), 0)").Row().Scan(&stats.TodayRevenue)

	dc.DB.Model(&models.Expense{}).
		Where("store_id = ? AND expense_date >= ? AND expense_date < ?", storeID, dayStart, dayEnd).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TodayExpenses)

	// Transaksi offline yang masuk lewat sync hari ini
	dc.DB.Model(&models.Transaction{}).
		Where("store_id = ? AND is_synced = ? AND created_at >= ? AND created_at < ?", storeID, true, dayStart, dayEnd).
		Count(&stats.SyncedOffline)

	dc.DB.Model(&models.TransactionItem{}).
		Select("transaction_items.product_id, transaction_items.name, SUM(transaction_items.quantity) as quantity, SUM(transaction_items.line_subtotal) as revenue").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.store_id = ? AND transactions.deleted_at IS NULL", storeID).
		Group("transaction_items.product_id, transaction_items.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&stats.TopProducts)

	dc.DB.Where("store_id = ? AND stock <= ?", storeID, 5).
		Order("stock ASC").
		Limit(10).
		Find(&stats.LowStock)

	kds.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}
