package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

// Toleransi pembulatan untuk validasi aritmetika total.
const amountTolerance = 0.01

// Batas retry saat nomor invoice bentrok dengan commit lain.
const maxInvoiceRetries = 5

// ItemInput adalah satu baris belanja pada request commit.
type ItemInput struct {
	ProductID    uint    `json:"product_id" binding:"required"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity" binding:"required"`
	UnitPrice    float64 `json:"unit_price"`
	LineDiscount float64 `json:"line_discount"`
	LineSubtotal float64 `json:"line_subtotal"`
}

// TransactionInput adalah payload commit, dipakai checkout online maupun sync.
// CreatedAt dipertahankan dari sisi client untuk transaksi offline.
type TransactionInput struct {
	LocalID        string      `json:"local_id"`
	PromoID        uint        `json:"promo_id"`
	Items          []ItemInput `json:"items" binding:"required"`
	Subtotal       float64     `json:"subtotal"`
	Tax            float64     `json:"tax"`
	Discount       float64     `json:"discount"`
	Total          float64     `json:"total"`
	AmountPaid     float64     `json:"amount_paid"`
	Change         float64     `json:"change"`
	PaymentMethod  string      `json:"payment_method"`
	PaymentChannel string      `json:"payment_channel"`
	CreatedAt      time.Time   `json:"created_at"`
	IsSynced       bool        `json:"-"`
}

// TransactionService menangani commit dan penghapusan transaksi.
type TransactionService struct {
	db       *gorm.DB
	invoices *InvoiceService
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{
		db:       db,
		invoices: NewInvoiceService(db),
	}
}

// Validate memeriksa payload sebelum masuk ke jalur commit.
func (in *TransactionInput) Validate() error {
	if len(in.Items) == 0 {
		return utils.ValidationErrorf("transaction has no items")
	}
	for _, item := range in.Items {
		if item.ProductID == 0 {
			return utils.ValidationErrorf("item is missing product_id")
		}
		if item.Quantity <= 0 {
			return utils.ValidationErrorf("item quantity must be positive")
		}
	}
	if in.Subtotal < 0 || in.Tax < 0 || in.Discount < 0 || in.Total < 0 || in.AmountPaid < 0 {
		return utils.ValidationErrorf("monetary amounts must be non-negative")
	}
	if math.Abs(in.Total-(in.Subtotal-in.Discount+in.Tax)) > amountTolerance {
		return utils.ValidationErrorf("total does not match subtotal - discount + tax")
	}
	switch in.PaymentMethod {
	case models.PaymentCash:
		change := in.AmountPaid - in.Total
		if change < -amountTolerance {
			return utils.ValidationErrorf("amount paid is less than total")
		}
		if math.Abs(in.Change-change) > amountTolerance {
			return utils.ValidationErrorf("change does not match amount paid - total")
		}
	case models.PaymentCard, models.PaymentQRIS, models.PaymentTransfer:
		// non-cash: amount paid == total, tidak ada kembalian
	default:
		return utils.ValidationErrorf("unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

// Commit mencatat satu transaksi: assign invoice, simpan item snapshot,
// dan kurangi stok tiap produk. Replay dengan local_id yang sudah pernah
// commit mengembalikan transaksi lama, bukan commit ganda.
func (s *TransactionService) Commit(storeID, cashierID uint, in TransactionInput) (*models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.LocalID != "" {
		existing, err := s.findByLocalID(storeID, in.LocalID)
		switch {
		case err == nil:
			return existing, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			// Kegagalan query bukan berarti belum pernah commit;
			// jangan lanjut supaya tidak berisiko commit ganda.
			return nil, err
		}
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if err := s.checkPromo(storeID, in, createdAt); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxInvoiceRetries; attempt++ {
		trx, err := s.tryCommit(storeID, cashierID, in, createdAt)
		if err == nil {
			return trx, nil
		}
		if !isDuplicateErr(err) {
			return nil, err
		}
		// Bentrok unique index: bisa race nomor invoice, bisa replay local_id
		// yang menang di commit lain. Cek dulu sebelum retry.
		if in.LocalID != "" {
			existing, ferr := s.findByLocalID(storeID, in.LocalID)
			if ferr == nil {
				return existing, nil
			}
			if !errors.Is(ferr, gorm.ErrRecordNotFound) {
				return nil, ferr
			}
		}
		lastErr = err
	}

	return nil, utils.ConflictErrorf("invoice number conflict persists after %d attempts: %v", maxInvoiceRetries, lastErr)
}

// checkPromo memvalidasi diskon yang diklaim client terhadap promo toko.
// Tanpa promo_id, diskon bebas (diskon manual kasir).
func (s *TransactionService) checkPromo(storeID uint, in TransactionInput, at time.Time) error {
	if in.PromoID == 0 {
		return nil
	}

	var promo models.Promo
	if err := s.db.Where("store_id = ?", storeID).First(&promo, in.PromoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundErrorf("promo %d not found", in.PromoID)
		}
		return err
	}

	if !promo.AppliesOn(at) {
		return utils.ValidationErrorf("promo %q is not active at transaction time", promo.Name)
	}
	if math.Abs(in.Discount-promo.DiscountFor(in.Subtotal)) > amountTolerance {
		return utils.ValidationErrorf("discount does not match promo %q", promo.Name)
	}
	return nil
}

func (s *TransactionService) tryCommit(storeID, cashierID uint, in TransactionInput, createdAt time.Time) (*models.Transaction, error) {
	var trx models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		invoiceNumber, err := s.invoices.NextNumber(tx, storeID, time.Now())
		if err != nil {
			return err
		}

		var localID *string
		if in.LocalID != "" {
			localID = &in.LocalID
		}
		var promoID *uint
		if in.PromoID != 0 {
			promoID = &in.PromoID
		}

		trx = models.Transaction{
			StoreID:        storeID,
			CashierID:      cashierID,
			InvoiceNumber:  invoiceNumber,
			LocalID:        localID,
			PromoID:        promoID,
			Subtotal:       in.Subtotal,
			Tax:            in.Tax,
			Discount:       in.Discount,
			Total:          in.Total,
			AmountPaid:     in.AmountPaid,
			Change:         in.Change,
			PaymentMethod:  in.PaymentMethod,
			PaymentChannel: in.PaymentChannel,
			PaymentStatus:  models.PaymentStatusSettled,
			IsSynced:       in.IsSynced,
			CreatedAt:      createdAt,
			UpdatedAt:      time.Now(),
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		for _, item := range in.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NotFoundErrorf("product %d not found", item.ProductID)
				}
				return err
			}

			name := item.Name
			if name == "" {
				name = product.Name
			}
			unitPrice := item.UnitPrice
			if unitPrice == 0 {
				unitPrice = product.Price
			}
			lineSubtotal := item.LineSubtotal
			if lineSubtotal == 0 {
				lineSubtotal = float64(item.Quantity)*unitPrice - item.LineDiscount
			}

			trxItem := models.TransactionItem{
				TransactionID: trx.ID,
				ProductID:     product.ID,
				Name:          name,
				Quantity:      item.Quantity,
				UnitPrice:     unitPrice,
				LineDiscount:  item.LineDiscount,
				LineSubtotal:  lineSubtotal,
				CreatedAt:     createdAt,
				UpdatedAt:     time.Now(),
			}
			if err := tx.Create(&trxItem).Error; err != nil {
				return err
			}
			trx.Items = append(trx.Items, trxItem)

			// Decrement atomik; stok boleh negatif (oversell dilaporkan,
			// tidak dicegah).
			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &trx, nil
}

// Delete menghapus transaksi beserta item-nya dan mengembalikan stok.
// Nomor invoice yang sudah terpakai tidak pernah di-recycle.
func (s *TransactionService) Delete(storeID, trxID uint) (*models.Transaction, error) {
	var trx models.Transaction
	if err := s.db.Preload("Items").
		Where("store_id = ?", storeID).
		First(&trx, trxID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErrorf("transaction %d not found", trxID)
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range trx.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("transaction_id = ?", trx.ID).
			Delete(&models.TransactionItem{}).Error; err != nil {
			return err
		}
		// Soft delete: baris tetap ada untuk generator invoice
		return tx.Delete(&models.Transaction{}, trx.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &trx, nil
}

func (s *TransactionService) findByLocalID(storeID uint, localID string) (*models.Transaction, error) {
	// Unscoped: replay dari local_id yang transaksinya sudah dihapus tetap
	// dianggap sudah commit, bukan commit ulang.
	var existing models.Transaction
	err := s.db.Unscoped().Preload("Items").
		Where("store_id = ? AND local_id = ?", storeID, localID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// isDuplicateErr mengenali pelanggaran unique constraint dari driver
// mysql maupun sqlite.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
