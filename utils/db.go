package utils

import (
	"sync"

	"gorm.io/gorm"
)

// Koneksi database proses. Controller berbasis struct menerima *gorm.DB
// lewat konstruktor; handler package-level (webhook Midtrans) mengambilnya
// dari sini.
var (
	dbConn *gorm.DB
	dbMu   sync.RWMutex
)

// InitDB menyimpan koneksi database sekali di startup; pemanggilan
// berikutnya diabaikan.
func InitDB(database *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if dbConn == nil {
		dbConn = database
	}
}

// GetDB mengembalikan koneksi database proses.
func GetDB() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return dbConn
}
