package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/models"
	"github.com/dimasprayoga/warung-pos/utils"
)

// Batas jumlah transaksi yang ikut dikirim pada mode full.
const reconciliationListCap = 200

// ChannelTotal adalah omzet satu channel pembayaran dalam sehari.
type ChannelTotal struct {
	Channel        string  `json:"channel"`
	Method         string  `json:"method"`
	Total          float64 `json:"total"`
	TotalFormatted string  `json:"total_formatted"`
	Count          int     `json:"count"`
}

// ReconciliationReport adalah agregasi omzet satu hari per channel pembayaran,
// untuk pencocokan laci kas dan rekening di akhir shift.
type ReconciliationReport struct {
	StoreID               uint                 `json:"store_id"`
	Date                  string               `json:"date"`
	TotalRevenue          float64              `json:"total_revenue"`
	TotalRevenueFormatted string               `json:"total_revenue_formatted"`
	TransactionCount      int                  `json:"transaction_count"`
	ByMethod              map[string]float64   `json:"by_method"`
	Channels              []ChannelTotal       `json:"channels"`
	Transactions          []models.Transaction `json:"transactions,omitempty"`
}

// ReconciliationService menghitung laporan rekonsiliasi harian (read-only).
type ReconciliationService struct {
	db *gorm.DB
}

func NewReconciliationService(db *gorm.DB) *ReconciliationService {
	return &ReconciliationService{db: db}
}

// Reconcile mengagregasi transaksi storeID dengan created_at dalam hari date
// (tengah malam waktu lokal toko, rentang setengah terbuka 24 jam).
// summaryOnly menghilangkan daftar transaksi dari respons.
func (s *ReconciliationService) Reconcile(storeID uint, date string, summaryOnly bool) (*ReconciliationReport, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, utils.ValidationErrorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	dayEnd := day.Add(24 * time.Hour)

	var transactions []models.Transaction
	if err := s.db.Preload("Items").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, day, dayEnd).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		StoreID:          storeID,
		Date:             date,
		TransactionCount: len(transactions),
		ByMethod:         make(map[string]float64),
	}

	channelTotals := make(map[string]*ChannelTotal)
	for _, trx := range transactions {
		report.TotalRevenue += trx.Total
		report.ByMethod[trx.PaymentMethod] += trx.Total

		// Channel spesifik (bank/e-wallet) jika tercatat; selain itu
		// jatuh ke bucket default per metode.
		channel := trx.PaymentChannel
		if channel == "" {
			channel = trx.PaymentMethod + "_IDR"
		}
		ct, ok := channelTotals[channel]
		if !ok {
			ct = &ChannelTotal{Channel: channel, Method: trx.PaymentMethod}
			channelTotals[channel] = ct
		}
		ct.Total += trx.Total
		ct.Count++
	}

	report.Channels = make([]ChannelTotal, 0, len(channelTotals))
	for _, ct := range channelTotals {
		ct.TotalFormatted = utils.FormatCurrencyIDR(ct.Total)
		report.Channels = append(report.Channels, *ct)
	}
	sort.Slice(report.Channels, func(i, j int) bool {
		if report.Channels[i].Total != report.Channels[j].Total {
			return report.Channels[i].Total > report.Channels[j].Total
		}
		return report.Channels[i].Channel < report.Channels[j].Channel
	})

	report.TotalRevenueFormatted = utils.FormatCurrencyIDR(report.TotalRevenue)

	if !summaryOnly {
		if len(transactions) > reconciliationListCap {
			transactions = transactions[:reconciliationListCap]
		}
		report.Transactions = transactions
	}

	return report, nil
}
