package offline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrStorageUnavailable dikembalikan saat penyimpanan lokal tidak bisa
// dipakai. Antrian offline tidak boleh gagal diam-diam.
var ErrStorageUnavailable = errors.New("local storage unavailable")

// KVStore adalah penyimpanan key-value durable untuk data offline kasir.
// Nilai harus bisa di-serialize ke JSON.
type KVStore interface {
	Get(key string, out interface{}) (bool, error)
	Set(key string, value interface{}) error
	Remove(key string) error
}

// FileStore menyimpan tiap key sebagai satu file JSON di sebuah direktori.
// Tulisan memakai file sementara + rename supaya tidak ada file setengah jadi
// setelah crash.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ErrStorageUnavailable
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Get(key string, out interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, ErrStorageUnavailable
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileStore) Set(key string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ErrStorageUnavailable
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return ErrStorageUnavailable
	}
	return nil
}

func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return ErrStorageUnavailable
	}
	return nil
}
