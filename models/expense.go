package models

import "time"

type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StoreID     uint      `gorm:"index;not null" json:"store_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`
	ExpenseDate time.Time `gorm:"index;not null" json:"expense_date"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
