package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/kds"
	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/services"
	"github.com/dimasprayoga/warung-pos/utils"
)

type TransactionController struct {
	DB      *gorm.DB
	service *services.TransactionService
	qris    *services.QRISService
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{
		DB:      db,
		service: services.NewTransactionService(db),
	}
}

// WithQRIS memasang service charge QRIS untuk checkout online.
func (tc *TransactionController) WithQRIS(qris *services.QRISService) *TransactionController {
	tc.qris = qris
	return tc
}

// CreateTransaction -> checkout online kasir. Jalur commit yang sama
// dengan sync; bedanya tidak ada local_id dan is_synced=false.
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	cashierIDInterface, _ := c.Get("userID")
	cashierID, _ := cashierIDInterface.(uint)

	var input services.TransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	input.LocalID = ""
	input.IsSynced = false

	trx, err := tc.service.Commit(storeID, cashierID, input)
	if err != nil {
		utils.RespondError(c, utils.StatusFromError(err), err)
		return
	}

	response := gin.H{"transaction": trx}

	// Untuk QRIS online, buat charge Midtrans sekalian
	if tc.qris != nil && trx.PaymentMethod == models.PaymentQRIS {
		charge, qerr := tc.qris.CreateCharge(trx.InvoiceNumber, int64(trx.Total))
		if qerr != nil {
			utils.ErrorLogger.Printf("QRIS charge failed for %s: %v", trx.InvoiceNumber, qerr)
		} else {
			// Status settled final menunggu callback Midtrans
			tc.DB.Model(trx).Update("payment_status", models.PaymentStatusPending)
			trx.PaymentStatus = models.PaymentStatusPending
			response["qris_charge"] = charge
		}
	}

	kds.BroadcastTransactionCreated(*trx)
	kds.BroadcastKitchenUpdate(trx.Items)

	utils.RespondJSON(c, http.StatusCreated, "Transaction created", response)
}

// GetAllTransactions -> daftar transaksi per toko, filter tanggal opsional
func (tc *TransactionController) GetAllTransactions(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	query := tc.DB.Preload("Items").Where("store_id = ?", storeID)
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("invalid date %q", date))
			return
		}
		query = query.Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour))
	}

	var transactions []models.Transaction
	if err := query.Order("created_at DESC").Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of transactions", transactions)
}

// GetTransactionByID -> detail satu transaksi
func (tc *TransactionController) GetTransactionByID(c *gin.Context) {
	idStr := c.Param("transaction_id")
	id, _ := strconv.Atoi(idStr)

	var trx models.Transaction
	if err := tc.DB.Preload("Items").First(&trx, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction detail", trx)
}

// DeleteTransaction -> hapus transaksi, stok dikembalikan.
// Nomor invoice yang sudah terbit tidak pernah dipakai ulang.
func (tc *TransactionController) DeleteTransaction(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	idStr := c.Param("transaction_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("invalid transaction id"))
		return
	}

	trx, err := tc.service.Delete(storeID, uint(id))
	if err != nil {
		utils.RespondError(c, utils.StatusFromError(err), err)
		return
	}

	kds.BroadcastTransactionDeleted(*trx)

	utils.RespondJSON(c, http.StatusOK, "Transaction deleted, stock restored", gin.H{
		"invoice_number": trx.InvoiceNumber,
	})
}
