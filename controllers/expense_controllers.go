package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

type ExpenseController struct {
	DB *gorm.DB
}

func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

// GetAllExpenses -> pengeluaran per toko, opsional filter tanggal
func (ec *ExpenseController) GetAllExpenses(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	query := ec.DB.Where("store_id = ?", storeID)
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("invalid date %q", date))
			return
		}
		query = query.Where("expense_date >= ? AND expense_date < ?", day, day.Add(24*time.Hour))
	}

	var expenses []models.Expense
	if err := query.Order("expense_date DESC").Find(&expenses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of expenses", expenses)
}

// CreateExpense -> catat pengeluaran
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	var req struct {
		Amount      float64   `json:"amount" binding:"required"`
		Description string    `json:"description"`
		ExpenseDate time.Time `json:"expense_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Amount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("amount must be positive"))
		return
	}
	if req.ExpenseDate.IsZero() {
		req.ExpenseDate = time.Now()
	}

	userID, _ := c.Get("userID")
	uid, _ := userID.(uint)

	expense := models.Expense{
		StoreID:     storeID,
		UserID:      uid,
		Amount:      req.Amount,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
	}
	if err := ec.DB.Create(&expense).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Expense recorded", expense)
}

// DeleteExpense -> hapus pengeluaran
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	expenseID := c.Param("expense_id")

	if err := ec.DB.Delete(&models.Expense{}, expenseID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Expense deleted", nil)
}
