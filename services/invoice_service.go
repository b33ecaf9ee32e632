package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
)

// InvoiceService menghasilkan nomor invoice INV-YYYYMMDD-NNNN, unik per toko,
// urut naik dalam satu hari kalender. Tanggal memakai jam server saat commit.
// Uniqueness dijamin oleh index (store_id, invoice_number); generator ini
// hanya menghitung kandidat, caller wajib retry saat bentrok.
type InvoiceService struct {
	DB *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{DB: db}
}

// NextNumber menghitung kandidat nomor invoice berikutnya untuk storeID
// pada waktu now, berdasarkan nomor tertinggi dengan prefix hari yang sama.
// Format fixed-width zero-padded, jadi urutan leksikografis == urutan numerik.
func (s *InvoiceService) NextNumber(tx *gorm.DB, storeID uint, now time.Time) (string, error) {
	prefix := "INV-" + now.Format("20060102")

	// Unscoped: transaksi yang sudah dihapus tetap dihitung supaya nomor
	// yang pernah terbit tidak terbit ulang.
	var last models.Transaction
	err := tx.Unscoped().Select("invoice_number").
		Where("store_id = ? AND invoice_number LIKE ?", storeID, prefix+"-%").
		Order("invoice_number DESC").
		First(&last).Error

	seq := 1
	if err == nil {
		parsed, perr := parseInvoiceSeq(last.InvoiceNumber)
		if perr != nil {
			return "", perr
		}
		seq = parsed + 1
	} else if err != gorm.ErrRecordNotFound {
		return "", err
	}

	if seq > 9999 {
		return "", fmt.Errorf("invoice sequence exhausted for %s", prefix)
	}

	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

func parseInvoiceSeq(invoiceNumber string) (int, error) {
	idx := strings.LastIndex(invoiceNumber, "-")
	if idx < 0 || idx+1 >= len(invoiceNumber) {
		return 0, fmt.Errorf("malformed invoice number %q", invoiceNumber)
	}
	seq, err := strconv.Atoi(invoiceNumber[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed invoice number %q", invoiceNumber)
	}
	return seq, nil
}
