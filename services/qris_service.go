package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// QRISService membuat charge QRIS lewat Midtrans CoreAPI untuk checkout
// online. Penjualan QRIS offline hanya mencatat channel, tanpa charge.
type QRISService struct {
	client    coreapi.Client
	serverKey string
}

func NewQRISService() *QRISService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	svc := &QRISService{serverKey: serverKey}
	svc.client.New(serverKey, env)
	return svc
}

// ValidateSignature memvalidasi signature callback Midtrans.
// Format: sha512(order_id + status_code + gross_amount + server_key).
func (s *QRISService) ValidateSignature(orderID, statusCode, grossAmount, signature string) bool {
	signatureString := fmt.Sprintf("%s%s%s%s", orderID, statusCode, grossAmount, s.serverKey)
	hash := sha512.New()
	hash.Write([]byte(signatureString))
	return hex.EncodeToString(hash.Sum(nil)) == signature
}

// MapTransactionStatus memetakan status Midtrans ke status internal.
func MapTransactionStatus(status string) string {
	switch status {
	case "capture", "settlement":
		return "settled"
	case "pending", "authorize":
		return "pending"
	default:
		return "failed"
	}
}

// CreateCharge membuat charge QRIS untuk satu invoice. GrossAmt dalam
// rupiah utuh (Midtrans tidak menerima pecahan untuk IDR).
func (s *QRISService) CreateCharge(invoiceNumber string, amount int64) (*coreapi.ChargeResponse, error) {
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  invoiceNumber,
			GrossAmt: amount,
		},
	}

	resp, midErr := s.client.ChargeTransaction(req)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans charge failed: %w", midErr)
	}
	return resp, nil
}
