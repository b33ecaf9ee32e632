package offline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const queueKey = "offline_transactions"

// QueuedItem adalah satu baris belanja pada transaksi offline.
type QueuedItem struct {
	ProductID    uint    `json:"product_id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	LineDiscount float64 `json:"line_discount"`
	LineSubtotal float64 `json:"line_subtotal"`
}

// QueuedTransaction adalah penjualan yang tercatat lokal selama offline.
// LocalID hanya identitas antrian, bukan identitas final; server memberi
// ID dan nomor invoice sendiri saat commit.
type QueuedTransaction struct {
	LocalID        string       `json:"local_id"`
	Items          []QueuedItem `json:"items"`
	Subtotal       float64      `json:"subtotal"`
	Tax            float64      `json:"tax"`
	Discount       float64      `json:"discount"`
	Total          float64      `json:"total"`
	AmountPaid     float64      `json:"amount_paid"`
	Change         float64      `json:"change"`
	PaymentMethod  string       `json:"payment_method"`
	PaymentChannel string       `json:"payment_channel,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Queue adalah antrian FIFO transaksi offline di atas KVStore.
// Urutan antrian == urutan percobaan sync, supaya urutan invoice sedekat
// mungkin dengan urutan kronologis asli.
type Queue struct {
	store KVStore
	mu    sync.Mutex
}

// NewQueue membuat antrian di atas store. store boleh nil pada lingkungan
// tanpa penyimpanan lokal (mis. proses server); List/Remove/Clear menjadi
// no-op, Enqueue gagal dengan ErrStorageUnavailable.
func NewQueue(store KVStore) *Queue {
	return &Queue{store: store}
}

// Enqueue memberi localId baru, menambahkan transaksi ke akhir antrian,
// dan langsung mem-persist.
func (q *Queue) Enqueue(trx QueuedTransaction) (QueuedTransaction, error) {
	if q.store == nil {
		return QueuedTransaction{}, ErrStorageUnavailable
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	trx.LocalID = uuid.NewString()
	if trx.CreatedAt.IsZero() {
		trx.CreatedAt = time.Now()
	}

	list, err := q.load()
	if err != nil {
		return QueuedTransaction{}, err
	}
	list = append(list, trx)
	if err := q.store.Set(queueKey, list); err != nil {
		return QueuedTransaction{}, err
	}
	return trx, nil
}

// List mengembalikan isi antrian urut FIFO.
func (q *Queue) List() ([]QueuedTransaction, error) {
	if q.store == nil {
		return nil, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Remove menghapus tepat satu entry dengan localID; no-op jika tidak ada.
func (q *Queue) Remove(localID string) error {
	if q.store == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	list, err := q.load()
	if err != nil {
		return err
	}

	kept := make([]QueuedTransaction, 0, len(list))
	removed := false
	for _, trx := range list {
		if !removed && trx.LocalID == localID {
			removed = true
			continue
		}
		kept = append(kept, trx)
	}
	if !removed {
		return nil
	}
	return q.store.Set(queueKey, kept)
}

// Clear mengosongkan antrian. Hanya untuk reset destruktif eksplisit
// ("buang data offline"), bukan jalur sync normal.
func (q *Queue) Clear() error {
	if q.store == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Remove(queueKey)
}

func (q *Queue) load() ([]QueuedTransaction, error) {
	var list []QueuedTransaction
	if _, err := q.store.Get(queueKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}
