package utils

import (
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// StoreIDSource adalah satu sumber store id dengan prioritasnya.
// Resolusi memakai tabel sumber eksplisit, bukan fallback tersembunyi,
// supaya urutan prioritas bisa diuji.
type StoreIDSource struct {
	Name    string
	Resolve func() (uint, bool)
}

// storeIDCache menyimpan hasil resolusi terakhir per proses.
var storeIDCache struct {
	mu  sync.RWMutex
	id  uint
	set bool
}

// CacheStoreID menyimpan store id hasil resolusi untuk request berikutnya.
func CacheStoreID(id uint) {
	storeIDCache.mu.Lock()
	defer storeIDCache.mu.Unlock()
	storeIDCache.id = id
	storeIDCache.set = true
}

// CachedStoreID membaca cache; ok=false jika belum pernah di-set.
func CachedStoreID() (uint, bool) {
	storeIDCache.mu.RLock()
	defer storeIDCache.mu.RUnlock()
	return storeIDCache.id, storeIDCache.set
}

// ResetStoreIDCache dipakai test untuk mengosongkan cache antar kasus.
func ResetStoreIDCache() {
	storeIDCache.mu.Lock()
	defer storeIDCache.mu.Unlock()
	storeIDCache.id = 0
	storeIDCache.set = false
}

// ResolveStoreID mengembalikan store id dari sumber pertama yang punya nilai.
func ResolveStoreID(sources []StoreIDSource) (uint, bool) {
	for _, src := range sources {
		if id, ok := src.Resolve(); ok {
			return id, true
		}
	}
	return 0, false
}

// StoreIDSourcesFor menyusun tabel sumber untuk satu request, urut prioritas:
// query param eksplisit > token claim > cache proses > cookie > env var.
func StoreIDSourcesFor(c *gin.Context) []StoreIDSource {
	return []StoreIDSource{
		{Name: "query", Resolve: func() (uint, bool) {
			return parseStoreID(c.Query("store_id"))
		}},
		{Name: "claims", Resolve: func() (uint, bool) {
			if v, exists := c.Get("storeID"); exists {
				if id, ok := v.(uint); ok && id > 0 {
					return id, true
				}
			}
			return 0, false
		}},
		{Name: "cache", Resolve: CachedStoreID},
		{Name: "cookie", Resolve: func() (uint, bool) {
			cookie, err := c.Cookie("store_id")
			if err != nil {
				return 0, false
			}
			return parseStoreID(cookie)
		}},
		{Name: "env", Resolve: func() (uint, bool) {
			return parseStoreID(os.Getenv("DEFAULT_STORE_ID"))
		}},
	}
}

func parseStoreID(raw string) (uint, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
