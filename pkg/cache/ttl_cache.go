// Package cache, süresi dolan kayıtları düşüren generic in-memory cache
// sağlar.
//
// Buradaki tek tüketici conversation list memoizasyonudur: aynı snapshot
// version + aynı filtre kombinasyonu için liste bir kez kurulur, TTL
// dolana kadar tekrar kurulmaz. Version değiştiğinde eski key'ler doğal
// olarak erişilmez kalır ve cleanup döngüsü onları süpürür — ayrı bir
// invalidation mekanizması gerekmez.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, RWMutex korumalı generic bir TTL cache.
//
//	memo := cache.New[string, *models.ConversationList](30*time.Second, 5*time.Minute)
//	memo.Set(key, list)
//	val, ok := memo.Get(key)
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	// Close kapatır; cleanup goroutine'i bunun üzerinden döner.
	stopCleanup chan struct{}
}

// New, cache'i kurar ve cleanup goroutine'ini başlatır. ttl entry yaşam
// süresi, cleanupInterval süpürme sıklığıdır. İkisi ayrıdır çünkü Get
// zaten süreyi kontrol eder (stale değer asla dönmez); süpürme sadece
// erişilmeyen key'lerin belleğini geri verir.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get, key varsa ve süresi dolmamışsa (value, true) döner. Süresi dolmuş
// entry burada silinmez (silme Lock isterdi, RLock yetiyor) — fiziksel
// temizlik cleanup döngüsünün işi.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, değeri şimdi+TTL son kullanma tarihiyle yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete, key'i hemen düşürür.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear, tüm entry'leri atar.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Len, map'teki entry sayısı — henüz süpürülmemiş stale entry'ler dahil.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, cleanup goroutine'ini durdurur. Cache ömrü bitince çağrılmazsa
// goroutine sızar.
func (c *TTLCache[K, V]) Close() {
	close(c.stopCleanup)
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
