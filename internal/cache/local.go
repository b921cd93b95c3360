package cache

import (
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultLocalCacheSize = 256

type localEntry struct {
	payload   []byte
	expiresAt time.Time
}

var (
	localMu    sync.Mutex
	localStore *lru.Cache[string, localEntry]
)

// InitLocal 初始化进程内 LRU 缓存（Redis 未启用时使用）
func InitLocal(size int) error {
	if size <= 0 {
		size = defaultLocalCacheSize
	}
	store, err := lru.New[string, localEntry](size)
	if err != nil {
		return err
	}
	localMu.Lock()
	localStore = store
	localMu.Unlock()
	return nil
}

func localCache() *lru.Cache[string, localEntry] {
	localMu.Lock()
	defer localMu.Unlock()
	if localStore == nil {
		localStore, _ = lru.New[string, localEntry](defaultLocalCacheSize)
	}
	return localStore
}

func localGet(key string, dest interface{}) (bool, error) {
	store := localCache()
	entry, ok := store.Get(key)
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		store.Remove(key)
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func localSet(key string, payload []byte, ttl time.Duration) {
	entry := localEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	localCache().Add(key, entry)
}

func localDel(key string) {
	localCache().Remove(key)
}
