package models

import (
	"time"

	"gorm.io/gorm"
)

// Metode pembayaran yang didukung kasir.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentQRIS     = "QRIS"
	PaymentTransfer = "TRANSFER"
)

// Status pembayaran. Penjualan kasir (cash, kartu, QRIS statis) langsung
// settled; charge QRIS online lewat Midtrans mulai pending sampai callback.
const (
	PaymentStatusSettled = "settled"
	PaymentStatusPending = "pending"
	PaymentStatusFailed  = "failed"
)

// Transaction adalah penjualan yang sudah tercatat di server.
// InvoiceNumber di-assign saat commit dan tidak pernah dipakai ulang,
// meskipun transaksi kemudian dihapus.
type Transaction struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	StoreID       uint   `gorm:"uniqueIndex:idx_trx_store_invoice;uniqueIndex:idx_trx_store_local" json:"store_id"`
	Store         Store  `gorm:"foreignKey:StoreID" json:"-"`
	CashierID     uint   `gorm:"index" json:"cashier_id"`
	Cashier       User   `gorm:"foreignKey:CashierID" json:"-"`
	InvoiceNumber string `gorm:"type:varchar(32);uniqueIndex:idx_trx_store_invoice;not null" json:"invoice_number"`
	// LocalID adalah id antrian offline milik client; dipakai untuk menolak
	// commit ganda saat retry setelah timeout. NULL untuk checkout online
	// supaya unique index tidak bentrok antar transaksi tanpa local id.
	LocalID *string `gorm:"type:varchar(64);uniqueIndex:idx_trx_store_local" json:"local_id,omitempty"`

	// PromoID diisi kalau diskon berasal dari promo toko.
	PromoID *uint `gorm:"index" json:"promo_id,omitempty"`

	Subtotal   float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax        float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"tax"`
	Discount   float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"discount"`
	Total      float64 `gorm:"type:decimal(12,2);not null" json:"total"`
	AmountPaid float64 `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Change     float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"change"`

	PaymentMethod  string `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentChannel string `gorm:"type:varchar(50)" json:"payment_channel,omitempty"` // bank/e-wallet spesifik, opsional
	PaymentStatus  string `gorm:"type:varchar(20);not null;default:'settled'" json:"payment_status"`
	IsSynced       bool   `gorm:"default:false" json:"is_synced"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`

	// CreatedAt diisi dari sisi client untuk transaksi offline supaya
	// waktu penjualan asli tidak tertimpa waktu commit.
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	// Soft delete: baris yang dihapus tetap terlihat oleh generator invoice
	// sehingga nomor yang sudah terbit tidak pernah terbit ulang.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type TransactionItem struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TransactionID uint        `gorm:"not null" json:"transaction_id"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID     uint        `gorm:"not null" json:"product_id"`
	Product       Product     `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	// Snapshot nama dan harga saat penjualan, bukan join ke master produk.
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	UnitPrice    float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineDiscount float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"line_discount"`
	LineSubtotal float64 `gorm:"type:decimal(12,2);not null" json:"line_subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
