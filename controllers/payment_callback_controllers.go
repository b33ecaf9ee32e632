package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dimasprayoga/warung-pos/kds"
	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/services"
	"github.com/dimasprayoga/warung-pos/utils"
)

// HandlePaymentCallback -> POST /payments/callback. Webhook Midtrans untuk
// charge QRIS online; order_id adalah nomor invoice transaksi.
func HandlePaymentCallback(c *gin.Context) {
	var request struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	qris := services.NewQRISService()
	if !qris.ValidateSignature(request.OrderID, request.StatusCode, request.GrossAmount, request.SignatureKey) {
		utils.ErrorLogger.Printf("Invalid Midtrans signature for order %s", request.OrderID)
		utils.RespondError(c, http.StatusUnauthorized, utils.ValidationErrorf("invalid signature"))
		return
	}

	db := utils.GetDB()

	var trx models.Transaction
	if err := db.Where("invoice_number = ?", request.OrderID).First(&trx).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.NotFoundErrorf("transaction %s not found", request.OrderID))
		return
	}

	status := services.MapTransactionStatus(request.TransactionStatus)
	if trx.PaymentStatus == status {
		// Midtrans bisa mengirim notifikasi yang sama berulang
		utils.RespondJSON(c, http.StatusOK, "Status unchanged", nil)
		return
	}

	if err := db.Model(&trx).Update("payment_status", status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Payment %s for invoice %s (midtrans: %s)", status, trx.InvoiceNumber, request.TransactionStatus)
	kds.BroadcastDashboardUpdate(gin.H{
		"invoice_number": trx.InvoiceNumber,
		"payment_status": status,
	})

	utils.RespondJSON(c, http.StatusOK, "Callback processed", nil)
}
