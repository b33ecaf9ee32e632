package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/services"
	"github.com/dimasprayoga/warung-pos/utils"
)

func setupCommitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Promo{}, &models.Transaction{}, &models.TransactionItem{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	db.Create(&models.Category{StoreID: 1, Name: "Minuman"})
	db.Create(&models.Product{
		StoreID:    1,
		CategoryID: 1,
		SKU:        "ESTEH-01",
		Name:       "Es Teh Manis",
		Price:      5000,
		Stock:      100,
	})
	return db
}

func validInput() services.TransactionInput {
	return services.TransactionInput{
		Items: []services.ItemInput{
			{ProductID: 1, Name: "Es Teh Manis", Quantity: 3, UnitPrice: 5000, LineSubtotal: 15000},
		},
		Subtotal:      15000,
		Total:         15000,
		AmountPaid:    20000,
		Change:        5000,
		PaymentMethod: models.PaymentCash,
	}
}

func TestCommitAssignsInvoiceAndDecrementsStock(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	trx, err := svc.Commit(1, 1, validInput())
	assert.NoError(t, err)
	assert.Equal(t, time.Now().Format("INV-20060102")+"-0001", trx.InvoiceNumber)
	assert.Len(t, trx.Items, 1)

	var product models.Product
	db.First(&product, 1)
	assert.Equal(t, 97, product.Stock)
}

func TestCommitValidatesTotalArithmetic(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := validInput()
	in.Total = 14000 // subtotal - discount + tax = 15000

	_, err := svc.Commit(1, 1, in)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCommitValidatesCashChange(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := validInput()
	in.AmountPaid = 10000 // kurang dari total
	in.Change = 0

	_, err := svc.Commit(1, 1, in)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCommitRejectsUnknownPaymentMethod(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := validInput()
	in.PaymentMethod = "CRYPTO"

	_, err := svc.Commit(1, 1, in)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCommitRejectsNonPositiveQuantity(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := validInput()
	in.Items[0].Quantity = 0

	_, err := svc.Commit(1, 1, in)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCommitMissingProductIsNotFound(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := services.TransactionInput{
		Items: []services.ItemInput{
			{ProductID: 99, Quantity: 1, UnitPrice: 1000, LineSubtotal: 1000},
		},
		Subtotal:      1000,
		Total:         1000,
		AmountPaid:    1000,
		PaymentMethod: models.PaymentQRIS,
	}

	_, err := svc.Commit(1, 1, in)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	// Commit gagal utuh: tidak ada transaksi tersisa
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCommitReplaySameLocalIDIsIdempotent(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := validInput()
	in.LocalID = "queue-abc-123"

	first, err := svc.Commit(1, 1, in)
	assert.NoError(t, err)

	// Replay setelah timeout: harus dapat invoice yang sama, bukan commit baru
	second, err := svc.Commit(1, 1, in)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)

	// Stok hanya berkurang sekali
	var product models.Product
	db.First(&product, 1)
	assert.Equal(t, 97, product.Stock)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteRestoresStockKeepsInvoiceSequence(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	trx, err := svc.Commit(1, 1, validInput())
	assert.NoError(t, err)

	var product models.Product
	db.First(&product, 1)
	assert.Equal(t, 97, product.Stock)

	deleted, err := svc.Delete(1, trx.ID)
	assert.NoError(t, err)
	assert.Equal(t, trx.InvoiceNumber, deleted.InvoiceNumber)

	// Stok kembali persis sejumlah quantity
	db.First(&product, 1)
	assert.Equal(t, 100, product.Stock)

	// Nomor berikutnya tetap maju
	next, err := svc.Commit(1, 1, validInput())
	assert.NoError(t, err)
	assert.Greater(t, next.InvoiceNumber, trx.InvoiceNumber)
}

func TestDeleteMissingTransactionIsNotFound(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	_, err := svc.Delete(1, 999)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCommitPreservesClientCreatedAt(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	created := time.Date(2024, 3, 10, 14, 30, 0, 0, time.Local)
	in := validInput()
	in.LocalID = "queue-offline-1"
	in.CreatedAt = created

	trx, err := svc.Commit(1, 1, in)
	assert.NoError(t, err)
	assert.True(t, trx.CreatedAt.Equal(created))
}

func TestCommitAllowsOversell(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	in := services.TransactionInput{
		Items: []services.ItemInput{
			{ProductID: 1, Quantity: 150, UnitPrice: 5000, LineSubtotal: 750000},
		},
		Subtotal:      750000,
		Total:         750000,
		AmountPaid:    750000,
		PaymentMethod: models.PaymentTransfer,
	}

	// Stok boleh negatif: oversell dilaporkan, tidak dicegah
	_, err := svc.Commit(1, 1, in)
	assert.NoError(t, err)

	var product models.Product
	db.First(&product, 1)
	assert.Equal(t, -50, product.Stock)
}

func TestCommitValidatesPromoDiscount(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	db.Create(&models.Promo{
		StoreID:   1,
		Name:      "Diskon Gajian",
		Type:      "percent",
		Value:     10,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  true,
	})

	in := validInput()
	in.PromoID = 1
	in.Discount = 1500 // 10% dari 15000
	in.Total = 13500
	in.AmountPaid = 13500
	in.Change = 0

	trx, err := svc.Commit(1, 1, in)
	assert.NoError(t, err)
	assert.NotNil(t, trx.PromoID)
	assert.Equal(t, uint(1), *trx.PromoID)

	// Diskon yang tidak cocok dengan promo ditolak
	bad := validInput()
	bad.PromoID = 1
	bad.Discount = 5000
	bad.Total = 10000
	bad.AmountPaid = 10000
	bad.Change = 0
	_, err = svc.Commit(1, 2, bad)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCommitRejectsExpiredPromo(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	db.Create(&models.Promo{
		StoreID:   1,
		Name:      "Promo Lama",
		Type:      "fixed",
		Value:     2000,
		StartDate: time.Now().Add(-48 * time.Hour),
		EndDate:   time.Now().Add(-24 * time.Hour),
		IsActive:  true,
	})

	in := validInput()
	in.PromoID = 1
	in.Discount = 2000
	in.Total = 13000
	in.AmountPaid = 13000
	in.Change = 0

	_, err := svc.Commit(1, 1, in)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCommitSurfacesLocalIDLookupFailure(t *testing.T) {
	db := setupCommitTestDB(t)
	svc := services.NewTransactionService(db)

	// Rusak tabel transaksi: lookup local_id gagal dengan error query,
	// bukan record-not-found. Commit harus berhenti di situ, tidak
	// lanjut seolah-olah belum pernah commit.
	assert.NoError(t, db.Exec("ALTER TABLE transactions RENAME COLUMN local_id TO local_id_old").Error)

	in := validInput()
	in.LocalID = "queue-broken-lookup"

	_, err := svc.Commit(1, 1, in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "local_id")
}
