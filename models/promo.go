package models

import "time"

// Promo adalah diskon toko: persentase atau potongan tetap, berlaku pada rentang tanggal.
type Promo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoreID   uint      `gorm:"index;not null" json:"store_id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Type      string    `gorm:"type:varchar(20);not null;default:'percent'" json:"type"` // percent, fixed
	Value     float64   `gorm:"type:decimal(12,2);not null" json:"value"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// AppliesOn melaporkan apakah promo aktif pada waktu t.
func (p *Promo) AppliesOn(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// DiscountFor menghitung nilai potongan untuk subtotal tertentu.
func (p *Promo) DiscountFor(subtotal float64) float64 {
	if p.Type == "fixed" {
		if p.Value > subtotal {
			return subtotal
		}
		return p.Value
	}
	return subtotal * p.Value / 100
}
