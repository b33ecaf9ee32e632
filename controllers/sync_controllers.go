package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/kds"
	"github.com/dimasprayoga/warung-pos/services"
	"github.com/dimasprayoga/warung-pos/utils"
)

type SyncController struct {
	DB      *gorm.DB
	service *services.TransactionService
}

func NewSyncController(db *gorm.DB) *SyncController {
	return &SyncController{
		DB:      db,
		service: services.NewTransactionService(db),
	}
}

type syncRequest struct {
	Transactions []services.TransactionInput `json:"transactions" binding:"required"`
	StoreID      uint                        `json:"store_id"`
	CashierID    uint                        `json:"cashier_id"`
}

type syncedDetail struct {
	LocalID       string `json:"local_id"`
	ServerID      uint   `json:"server_id"`
	InvoiceNumber string `json:"invoice_number"`
}

type failedDetail struct {
	LocalID      string `json:"local_id"`
	ErrorMessage string `json:"error_message"`
}

// SyncTransactions -> POST /sync. Tiap transaksi dalam batch commit atau
// gagal sendiri-sendiri; kegagalan parsial tetap 200 dengan detail per item.
// Replay local_id yang sudah pernah commit mengembalikan invoice lama.
func (sc *SyncController) SyncTransactions(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Transactions) == 0 {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("empty transaction batch"))
		return
	}

	storeID := req.StoreID
	if storeID == 0 {
		resolved, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
		if !ok {
			utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
			return
		}
		storeID = resolved
	}

	cashierID := req.CashierID
	if cashierID == 0 {
		if v, exists := c.Get("userID"); exists {
			cashierID, _ = v.(uint)
		}
	}

	synced := []syncedDetail{}
	failed := []failedDetail{}

	for _, input := range req.Transactions {
		if input.LocalID == "" {
			failed = append(failed, failedDetail{
				LocalID:      "",
				ErrorMessage: "missing local_id",
			})
			continue
		}

		input.IsSynced = true
		trx, err := sc.service.Commit(storeID, cashierID, input)
		if err != nil {
			// Error per transaksi tidak pernah menggagalkan sisa batch
			failed = append(failed, failedDetail{
				LocalID:      input.LocalID,
				ErrorMessage: err.Error(),
			})
			continue
		}

		synced = append(synced, syncedDetail{
			LocalID:       input.LocalID,
			ServerID:      trx.ID,
			InvoiceNumber: trx.InvoiceNumber,
		})
		kds.BroadcastTransactionCreated(*trx)
	}

	result := gin.H{
		"success": len(failed) == 0,
		"synced":  len(synced),
		"failed":  len(failed),
		"details": gin.H{
			"synced": synced,
			"failed": failed,
		},
	}

	kds.BroadcastSyncCompleted(result)
	utils.InfoLogger.Printf("Sync batch for store %d: %d synced, %d failed", storeID, len(synced), len(failed))

	utils.RespondJSON(c, http.StatusOK, "Sync completed", result)
}
