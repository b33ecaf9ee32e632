package kds

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dimasprayoga/warung-pos/models"
)

// Event types
const (
	EventTransactionCreated = "transaction_created"
	EventTransactionDeleted = "transaction_deleted"
	EventKitchenUpdate      = "kitchen_update"
	EventStockUpdate        = "stock_update"
	EventSyncCompleted      = "sync_completed"
	EventDashboardUpdate    = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// KDSHub menampung semua client display (kitchen, owner, admin) dan
// menyiarkan event transaksi ke mereka.
type KDSHub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var kdsHub = KDSHub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()
	kdsHub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()
	delete(kdsHub.clients, conn)
	conn.Close()
}

// BroadcastTransactionCreated -> transaksi baru masuk (checkout online maupun sync)
func BroadcastTransactionCreated(trx models.Transaction) {
	broadcast(Message{
		Event: EventTransactionCreated,
		Data:  trx,
	})
}

// BroadcastTransactionDeleted -> transaksi dihapus, stok dikembalikan
func BroadcastTransactionDeleted(trx models.Transaction) {
	broadcast(Message{
		Event: EventTransactionDeleted,
		Data:  trx,
	})
}

// BroadcastKitchenUpdate -> update untuk kitchen display
func BroadcastKitchenUpdate(data interface{}) {
	broadcast(Message{
		Event: EventKitchenUpdate,
		Data:  data,
	})
}

// BroadcastStockUpdate -> perubahan stok produk
func BroadcastStockUpdate(product models.Product) {
	broadcast(Message{
		Event: EventStockUpdate,
		Data:  product,
	})
}

// BroadcastSyncCompleted -> hasil satu pass sync offline
func BroadcastSyncCompleted(data interface{}) {
	broadcast(Message{
		Event: EventSyncCompleted,
		Data:  data,
	})
}

// BroadcastDashboardUpdate -> update dashboard owner
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

// BroadcastMessage -> broadcast pesan umum
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

// broadcast -> fungsi internal untuk mengirim pesan
func broadcast(msg Message) {
	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range kdsHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client (role %s): %v", role, err)
			continue
		}
	}
}
