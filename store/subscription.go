// Package store — subscription fan-out.
//
// watchHub, aktif subscription'ları tutan ve her committed write sonrası
// etkilenen watcher'ları dürten merkezi yapıdır. Mimari olarak ws.Hub ile
// aynı ailedendir: register/unregister + notify, non-blocking teslim.
// Fark: client'lara byte değil, "yeniden sorgula" sinyali dağıtır —
// snapshot'ın kendisi her watcher'ın kendi goroutine'inde kurulur.
package store

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akinalp/sohbet/models"
)

// collection, subscription filtrelerinin ayrıştığı kayıt kümeleri.
type collection string

const (
	collectionMessages  collection = "messages"
	collectionFollows   collection = "follows"
	collectionFavorites collection = "favorites"
)

// watcher, tek bir subscription kaydıdır.
// wake channel'ı buffer'sız DEĞİL, 1 buffer'lıdır ve coalescing yapılır:
// watcher yavaşsa art arda gelen sinyaller teke iner — zaten her sinyalin
// anlamı "güncel tam snapshot'ı yeniden kur"dur, sayısı önemsizdir.
type watcher struct {
	col    collection
	userID string
	wake   chan struct{}
}

// watchHub, watcher set'i + monoton version sayacı.
type watchHub struct {
	mu       sync.RWMutex
	watchers map[*watcher]struct{}

	// ver: process genelinde monoton artan snapshot version token'ı.
	// atomic.Int64 — birden fazla goroutine güvenle okuyup artırabilir.
	ver atomic.Int64
}

func newWatchHub() *watchHub {
	return &watchHub{watchers: make(map[*watcher]struct{})}
}

func (h *watchHub) version() int64 {
	return h.ver.Load()
}

// bumpAndNotify, version'ı artırır ve verilen kullanıcıların ilgili
// collection watcher'larını uyandırır. Mutation path'inden çağrılır —
// önce bump, sonra notify: uyanmış watcher sorguladığında en az bump'lı
// state'i görür, version token'ı asla state'ten ileri gitmez.
func (h *watchHub) bumpAndNotify(col collection, userIDs ...string) {
	h.ver.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for w := range h.watchers {
		if w.col != col {
			continue
		}
		for _, id := range userIDs {
			if w.userID != id {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
				// Sinyal zaten bekliyor — coalesce.
			}
			break
		}
	}
}

func (h *watchHub) register(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchers[w] = struct{}{}
}

func (h *watchHub) unregister(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers, w)
}

// ─── Subscribe implementasyonları ───

// SubscribeMessages, kullanıcının mesaj kümesinin snapshot akışını başlatır.
func (a *Adapter) SubscribeMessages(ctx context.Context, userID string) <-chan Snapshot[models.Message] {
	return subscribe(ctx, a.hub, a.opts, collectionMessages, userID,
		func(c context.Context) ([]models.Message, error) {
			return a.messages.ListForUser(c, userID)
		})
}

// SubscribeFollows, kullanıcıya dokunan follow satırlarının akışını başlatır.
func (a *Adapter) SubscribeFollows(ctx context.Context, userID string) <-chan Snapshot[models.FollowRelation] {
	return subscribe(ctx, a.hub, a.opts, collectionFollows, userID,
		func(c context.Context) ([]models.FollowRelation, error) {
			return a.follows.ListForUser(c, userID)
		})
}

// SubscribeFavorites, owner'ın favorite satırlarının akışını başlatır.
func (a *Adapter) SubscribeFavorites(ctx context.Context, ownerID string) <-chan Snapshot[models.FavoriteRelation] {
	return subscribe(ctx, a.hub, a.opts, collectionFavorites, ownerID,
		func(c context.Context) ([]models.FavoriteRelation, error) {
			return a.favorites.ListForOwner(c, ownerID)
		})
}

// subscribe, ortak subscription döngüsü.
//
// Akış:
//  1. Watcher'ı kaydet, ilk tam snapshot'ı hemen teslim et
//  2. Her wake sinyalinde kümeyi yeniden sorgula, teslim et
//  3. ctx iptal olunca watcher'ı sil, output channel'ı kapat
//
// Version, sorgudan ÖNCE okunur: sorgu en az o version'ın state'ini görür,
// dolayısıyla token hiçbir zaman taşıdığı veriden taze görünmez. İki
// subscription yarışırsa token'lar da yarışır — çözüm fold katmanının
// last-snapshot-wins discard'ıdır, burada sıralama zorlanmaz.
//
// Teslim non-blocking'dir: consumer henüz önceki snapshot'ı almadıysa eski
// olan buffer'dan düşürülür, yenisi konur. Ara snapshot kaybı sorun değil —
// her teslim zaten tam kümedir.
func subscribe[T any](
	ctx context.Context,
	hub *watchHub,
	opts Options,
	col collection,
	userID string,
	query func(context.Context) ([]T, error),
) <-chan Snapshot[T] {
	out := make(chan Snapshot[T], 1)
	w := &watcher{col: col, userID: userID, wake: make(chan struct{}, 1)}
	hub.register(w)

	deliver := func() error {
		version := hub.version()
		records, err := query(ctx)
		if err != nil {
			return err
		}

		snap := Snapshot[T]{Version: version, Records: records}
		select {
		case out <- snap:
		default:
			select {
			case <-out:
			default:
			}
			select {
			case out <- snap:
			default:
			}
		}
		return nil
	}

	// deliverWithRetry, mutation path'indeki withRetry ile aynı bütçeyi
	// uygular. Kritik olan İLK teslim: o başarısız kalırsa bir sonraki
	// deneme ancak ileride bir mutation'ın wake'iyle gelirdi ve session
	// hiç ready olamazdı. Budget da tükenirse subscription düşmez,
	// sıradaki wake yeniden dener.
	deliverWithRetry := func() {
		attempts := opts.RetryAttempts
		if attempts < 1 {
			attempts = 1
		}
		backoff := opts.RetryBackoff

		for attempt := 1; attempt <= attempts; attempt++ {
			err := deliver()
			if err == nil {
				return
			}
			if ctx.Err() != nil {
				return
			}

			if attempt < attempts {
				log.Printf("[store] snapshot query attempt %d/%d failed (collection=%s user=%s), retrying in %s: %v",
					attempt, attempts, col, userID, backoff, err)
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return
				}
				backoff *= 2
				continue
			}

			log.Printf("[store] snapshot query failed after %d attempt(s) (collection=%s user=%s): %v",
				attempts, col, userID, err)
		}
	}

	go func() {
		defer func() {
			hub.unregister(w)
			close(out)
		}()

		// İlk snapshot — subscription kurulur kurulmaz mevcut state teslim edilir.
		deliverWithRetry()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.wake:
				// İptal ile wake yarışabilir — iptal kazanır, teslim yapılmaz.
				if ctx.Err() != nil {
					return
				}
				deliverWithRetry()
			}
		}
	}()

	return out
}
