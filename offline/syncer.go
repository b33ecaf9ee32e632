package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dimasprayoga/warung-pos/utils"
)

// ErrSyncInProgress dikembalikan saat ada pass sync lain yang masih jalan.
// Dua pass tidak boleh berebut isi antrian yang sama.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncedRecord mencatat satu transaksi yang berhasil commit di server.
type SyncedRecord struct {
	LocalID       string `json:"local_id"`
	ServerID      uint   `json:"server_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// FailedRecord mencatat satu transaksi yang gagal; entry-nya tetap di antrian.
type FailedRecord struct {
	LocalID      string `json:"local_id"`
	ErrorMessage string `json:"error_message"`
}

// SyncResult adalah hasil satu pass SyncAll.
type SyncResult struct {
	Success     bool           `json:"success"`
	SyncedCount int            `json:"synced_count"`
	FailedCount int            `json:"failed_count"`
	Synced      []SyncedRecord `json:"synced"`
	Failed      []FailedRecord `json:"failed"`
}

// syncResponse adalah amplop respons POST /sync dari server.
type syncResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Success bool `json:"success"`
		Synced  int  `json:"synced"`
		Failed  int  `json:"failed"`
		Details struct {
			Synced []SyncedRecord `json:"synced"`
			Failed []FailedRecord `json:"failed"`
		} `json:"details"`
	} `json:"data"`
}

// Syncer menguras antrian offline ke server: manual, lewat ticker, atau
// saat koneksi kembali. Semua jalur lewat SyncAll dengan satu in-flight
// guard supaya pass tidak pernah tumpang tindih.
type Syncer struct {
	queue     *Queue
	baseURL   string
	storeID   uint
	cashierID uint
	client    *http.Client

	tokenMu sync.RWMutex
	token   string

	inFlight sync.Mutex
	StopChan chan struct{}
	Interval time.Duration
}

func NewSyncer(queue *Queue, baseURL string, storeID, cashierID uint) *Syncer {
	return &Syncer{
		queue:     queue,
		baseURL:   baseURL,
		storeID:   storeID,
		cashierID: cashierID,
		client:    &http.Client{Timeout: 30 * time.Second},
		StopChan:  make(chan struct{}),
		Interval:  30 * time.Second,
	}
}

// SetToken memasang bearer token untuk request sync. Boleh dipanggil
// kapan saja, termasuk setelah re-login saat ticker background jalan.
func (s *Syncer) SetToken(token string) {
	s.tokenMu.Lock()
	s.token = token
	s.tokenMu.Unlock()
}

func (s *Syncer) bearer() string {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.token
}

// SyncAll membaca antrian sekali di awal lalu mencoba commit tiap transaksi
// urut FIFO, satu per satu. Entry yang diakui server dihapus dari antrian;
// yang gagal dibiarkan utuh untuk pass berikutnya. Kegagalan satu item
// tidak menghentikan sisanya.
func (s *Syncer) SyncAll(ctx context.Context) (*SyncResult, error) {
	if !s.inFlight.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.inFlight.Unlock()

	pending, err := s.queue.List()
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Synced: []SyncedRecord{},
		Failed: []FailedRecord{},
	}

	for _, trx := range pending {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		record, err := s.commitOne(ctx, trx)
		if err != nil {
			result.Failed = append(result.Failed, FailedRecord{
				LocalID:      trx.LocalID,
				ErrorMessage: err.Error(),
			})
			continue
		}

		if err := s.queue.Remove(trx.LocalID); err != nil {
			// Sudah commit di server tapi gagal hapus lokal; replay berikutnya
			// aman karena server menolak local_id ganda.
			utils.ErrorLogger.Printf("failed to remove synced transaction %s from queue: %v", trx.LocalID, err)
		}
		result.Synced = append(result.Synced, *record)
	}

	result.SyncedCount = len(result.Synced)
	result.FailedCount = len(result.Failed)
	result.Success = result.FailedCount == 0
	return result, nil
}

// commitOne mengirim satu transaksi sebagai batch tunggal ke POST /sync.
func (s *Syncer) commitOne(ctx context.Context, trx QueuedTransaction) (*SyncedRecord, error) {
	payload := map[string]interface{}{
		"transactions": []QueuedTransaction{trx},
		"store_id":     s.storeID,
		"cashier_id":   s.cashierID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sync", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := s.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrNetwork, err)
	}
	defer resp.Body.Close()

	var parsed syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed sync response", utils.ErrNetwork)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync rejected (%d): %s", resp.StatusCode, parsed.Message)
	}

	for _, failed := range parsed.Data.Details.Failed {
		if failed.LocalID == trx.LocalID {
			return nil, errors.New(failed.ErrorMessage)
		}
	}
	for _, synced := range parsed.Data.Details.Synced {
		if synced.LocalID == trx.LocalID {
			return &synced, nil
		}
	}
	return nil, fmt.Errorf("server did not acknowledge transaction %s", trx.LocalID)
}

// Start menjalankan auto-sync di background dengan interval tetap.
func (s *Syncer) Start() {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runPass()
			case <-s.StopChan:
				return
			}
		}
	}()
}

// Stop menghentikan auto-sync.
func (s *Syncer) Stop() {
	close(s.StopChan)
}

// OnOnline dipanggil saat koneksi kembali; langsung memicu satu pass.
func (s *Syncer) OnOnline() {
	go s.runPass()
}

func (s *Syncer) runPass() {
	result, err := s.SyncAll(context.Background())
	if err != nil {
		if !errors.Is(err, ErrSyncInProgress) {
			utils.ErrorLogger.Printf("auto sync pass failed: %v", err)
		}
		return
	}
	if result.SyncedCount > 0 || result.FailedCount > 0 {
		utils.InfoLogger.Printf("sync pass done: %d synced, %d still queued", result.SyncedCount, result.FailedCount)
	}
}
