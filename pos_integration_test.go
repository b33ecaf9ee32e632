package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/offline"
	"github.com/dimasprayoga/warung-pos/router"
	"github.com/dimasprayoga/warung-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndOfflineSync menguji flow utama:
// 0. Seed toko, owner, dan produk, lalu login -> token
// 1. Antre dua transaksi offline di file store lokal
// 2. Jalankan syncer terhadap server -> antrian terkuras
// 3. Replay pass kedua -> tidak ada transaksi ganda
// 4. Cek laporan rekonsiliasi hari ini
func TestEndToEndOfflineSync(t *testing.T) {
	db := setupTestDB()
	r := router.SetupRouter(db)

	server := httptest.NewServer(r)
	defer server.Close()

	token := loginTest(t, r)

	queue := setupOfflineQueue(t)
	enqueueTest(t, queue, 2, 30000, "CASH")
	enqueueTest(t, queue, 1, 15000, "QRIS")

	syncer := offline.NewSyncer(queue, server.URL, 1, 1)
	syncer.SetToken(token)

	result, err := syncer.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if !result.Success || result.SyncedCount != 2 || result.FailedCount != 0 {
		t.Fatalf("SyncAll: expected 2 synced 0 failed, got %+v", result)
	}

	pending, err := queue.List()
	if err != nil {
		t.Fatalf("queue.List: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("queue not drained, %d entries left", len(pending))
	}

	// Pass kedua dengan antrian kosong harus no-op
	result, err = syncer.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll replay: %v", err)
	}
	if result.SyncedCount != 0 {
		t.Fatalf("SyncAll replay: expected empty pass, got %+v", result)
	}

	var trxCount int64
	db.Model(&models.Transaction{}).Count(&trxCount)
	if trxCount != 2 {
		t.Fatalf("expected 2 transactions in DB, got %d", trxCount)
	}

	// Stok berkurang 3 dari dua transaksi
	var product models.Product
	db.First(&product, 1)
	if product.Stock != 47 {
		t.Fatalf("expected stock 47, got %d", product.Stock)
	}

	checkReconciliationTest(t, r, token)
}

// setupTestDB -> migrasi model di SQLite in-memory + seed data
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Store{},
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Promo{},
		&models.Expense{},
		&models.Transaction{},
		&models.TransactionItem{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Create(&models.Store{Name: "Warung Tengah", Address: "Jl. Pahlawan 7"})

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		StoreID:  1,
		Name:     "Test Owner",
		Email:    "owner@example.com",
		Password: string(hashedPassword),
		Role:     "owner",
	})

	db.Create(&models.Category{StoreID: 1, Name: "Makanan"})
	db.Create(&models.Product{
		StoreID:    1,
		CategoryID: 1,
		SKU:        "NASGOR-01",
		Name:       "Nasi Goreng",
		Price:      15000,
		Stock:      50,
	})

	return db
}

func setupOfflineQueue(t *testing.T) *offline.Queue {
	store, err := offline.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return offline.NewQueue(store)
}

func enqueueTest(t *testing.T, queue *offline.Queue, qty int, total float64, method string) {
	_, err := queue.Enqueue(offline.QueuedTransaction{
		Items: []offline.QueuedItem{
			{
				ProductID:    1,
				Name:         "Nasi Goreng",
				Quantity:     qty,
				UnitPrice:    15000,
				LineSubtotal: total,
			},
		},
		Subtotal:      total,
		Total:         total,
		AmountPaid:    total,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
}

func loginTest(t *testing.T, r *gin.Engine) string {
	body := map[string]string{
		"email":    "owner@example.com",
		"password": "secret123",
	}
	bodyBytes, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("loginTest fail: code=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if !resp.Status {
		t.Fatalf("loginTest: status=false, msg=%s", resp.Message)
	}
	if resp.Data.Token == "" {
		t.Fatalf("loginTest: token empty")
	}

	return resp.Data.Token
}

// checkReconciliationTest -> GET /reconciliation => total dua transaksi hari ini
func checkReconciliationTest(t *testing.T, r *gin.Engine, token string) {
	req := httptest.NewRequest(http.MethodGet, "/reconciliation?store_id=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("checkReconciliationTest: want 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			TotalRevenue     float64            `json:"total_revenue"`
			TransactionCount int                `json:"transaction_count"`
			ByMethod         map[string]float64 `json:"by_method"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if !resp.Status {
		t.Fatalf("checkReconciliationTest: status=false")
	}
	if resp.Data.TotalRevenue != 45000 {
		t.Fatalf("expected revenue 45000, got %v", resp.Data.TotalRevenue)
	}
	if resp.Data.TransactionCount != 2 {
		t.Fatalf("expected 2 transactions, got %d", resp.Data.TransactionCount)
	}
	if resp.Data.ByMethod["CASH"] != 30000 || resp.Data.ByMethod["QRIS"] != 15000 {
		t.Fatalf("unexpected method breakdown: %v", resp.Data.ByMethod)
	}
}
