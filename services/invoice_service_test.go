package services_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/services"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Transaction{}, &models.TransactionItem{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestNextNumberStartsAtOne(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := services.NewInvoiceService(db)

	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)
	number, err := svc.NextNumber(db, 1, now)
	assert.NoError(t, err)
	assert.Equal(t, "INV-20240520-0001", number)
}

func TestNextNumberIncrementsWithinDay(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := services.NewInvoiceService(db)
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)

	for i := 1; i <= 12; i++ {
		number, err := svc.NextNumber(db, 1, now)
		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-20240520-%04d", i), number)

		db.Create(&models.Transaction{
			StoreID:       1,
			InvoiceNumber: number,
			PaymentMethod: models.PaymentCash,
			CreatedAt:     now,
		})
	}
}

func TestNextNumberScopedPerStore(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := services.NewInvoiceService(db)
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)

	db.Create(&models.Transaction{
		StoreID:       1,
		InvoiceNumber: "INV-20240520-0007",
		PaymentMethod: models.PaymentCash,
		CreatedAt:     now,
	})

	// Toko lain mulai dari 1, tidak ikut counter toko 1
	number, err := svc.NextNumber(db, 2, now)
	assert.NoError(t, err)
	assert.Equal(t, "INV-20240520-0001", number)

	number, err = svc.NextNumber(db, 1, now)
	assert.NoError(t, err)
	assert.Equal(t, "INV-20240520-0008", number)
}

func TestNextNumberResetsPerDay(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := services.NewInvoiceService(db)

	db.Create(&models.Transaction{
		StoreID:       1,
		InvoiceNumber: "INV-20240519-0042",
		PaymentMethod: models.PaymentCash,
		CreatedAt:     time.Date(2024, 5, 19, 23, 0, 0, 0, time.Local),
	})

	number, err := svc.NextNumber(db, 1, time.Date(2024, 5, 20, 0, 5, 0, 0, time.Local))
	assert.NoError(t, err)
	assert.Equal(t, "INV-20240520-0001", number)
}

func TestInvoiceNumberNotRecycledAfterDelete(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := services.NewInvoiceService(db)
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)

	first, _ := svc.NextNumber(db, 1, now)
	db.Create(&models.Transaction{StoreID: 1, InvoiceNumber: first, PaymentMethod: models.PaymentCash, CreatedAt: now})

	second, _ := svc.NextNumber(db, 1, now)
	trx2 := models.Transaction{StoreID: 1, InvoiceNumber: second, PaymentMethod: models.PaymentCash, CreatedAt: now}
	db.Create(&trx2)

	// Hapus transaksi kedua; nomor berikutnya tetap maju, bukan memakai
	// ulang nomor yang sudah pernah terbit
	db.Delete(&models.Transaction{}, trx2.ID)

	third, err := svc.NextNumber(db, 1, now)
	assert.NoError(t, err)
	assert.Equal(t, "INV-20240520-0003", third)
}

func TestCommitConcurrentInvoicesAreUnique(t *testing.T) {
	// SQLite file dengan WAL + busy timeout supaya commit paralel tidak
	// gagal karena lock database, hanya bentrok unique index.
	dsn := "file:" + filepath.Join(t.TempDir(), "pos.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Transaction{}, &models.TransactionItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Create(&models.Category{StoreID: 1, Name: "Minuman"})
	db.Create(&models.Product{StoreID: 1, CategoryID: 1, SKU: "ESTEH-01", Name: "Es Teh Manis", Price: 5000, Stock: 100})

	svc := services.NewTransactionService(db)

	const n = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		invoices = make(map[string]bool)
		errs     []error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			trx, err := svc.Commit(1, 1, services.TransactionInput{
				Items: []services.ItemInput{
					{ProductID: 1, Quantity: 1, UnitPrice: 5000, LineSubtotal: 5000},
				},
				Subtotal:      5000,
				Total:         5000,
				AmountPaid:    5000,
				PaymentMethod: models.PaymentCash,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			invoices[trx.InvoiceNumber] = true
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	// Semua commit dapat nomor; bentrok diselesaikan lewat retry,
	// tidak ada nomor ganda
	assert.Len(t, invoices, n)
}
