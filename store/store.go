// Package store, record store adapter'ıdır: repository katmanının üstünde
// versiyonlu snapshot subscription'ları ve write-through mutation'lar sunar.
//
// Katman ayrımı:
//   - repository: ham SQL, collection başına bir interface
//   - store: snapshot versiyonlama, subscription fan-out, timeout + retry
//   - services: saf fold'lar ve iş mantığı — store interface'lerine bağımlı
//
// Store'un verdiği tek tutarlılık garantisi per-document atomicity'dir.
// Snapshot'lar "monotonically improving"dir ama strictly ordered değildir:
// iki snapshot yarışabilir. Bu yüzden her snapshot, adapter'ın monoton artan
// version sayacından bir token taşır — fold katmanı eski token'lı snapshot'ı
// discard eder (last-snapshot-wins, merge değil).
package store

import (
	"context"
	"time"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/repository"
)

// Snapshot, bir subscription'ın teslim ettiği tam kayıt kümesidir.
// Diff değil, replace-on-change: Records her teslimde filtrelenmiş kümenin
// tamamıdır. Version, freshness karşılaştırması için monoton token'dır.
type Snapshot[T any] struct {
	Version int64
	Records []T
}

// ─── Service katmanının bağımlı olduğu interface'ler ───
//
// Her service sadece ihtiyacı olan dilimi alır (Interface Segregation).
// Testlerde fake implementasyonlar bu interface'leri karşılar.

// MessageStore, mesaj yazma/okuma operasyonları.
type MessageStore interface {
	// CreateMessage, yeni mesajı kalıcılaştırır ve ilgili subscription'ları tetikler.
	CreateMessage(ctx context.Context, msg *models.Message) error

	// MarkConversationRead, counterpart → self okunmamışlarını okundu yapar.
	// At-least-once: tekrar çağrılması güvenlidir (zaten-okunmuşlar no-op).
	MarkConversationRead(ctx context.Context, selfID, counterpartID string) (int64, error)

	// ListConversation, iki kullanıcı arasındaki thread'i kronolojik döner.
	ListConversation(ctx context.Context, selfID, counterpartID string) ([]models.Message, error)
}

// SocialStore, follow ilişki operasyonları.
type SocialStore interface {
	GetFollow(ctx context.Context, followerID, followedID string) (*models.FollowRelation, error)
	CreateFollow(ctx context.Context, rel *models.FollowRelation) error
	SetFollowing(ctx context.Context, followerID, followedID string, following bool) error
	ListFollowsFor(ctx context.Context, userID string) ([]models.FollowRelation, error)
}

// FavoriteStore, favorite ilişki operasyonları.
type FavoriteStore interface {
	GetFavorite(ctx context.Context, ownerID, counterpartID string) (*models.FavoriteRelation, error)
	CreateFavorite(ctx context.Context, rel *models.FavoriteRelation) error
	SetFavorite(ctx context.Context, ownerID, counterpartID string, isMyFav bool) error
	ListFavoritesFor(ctx context.Context, ownerID string) ([]models.FavoriteRelation, error)
}

// ProfileStore, kullanıcı profil lookup'ları (read-only).
type ProfileStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]models.User, error)
	ListOtherUsers(ctx context.Context, selfID string) ([]models.User, error)
}

// Subscriber, projection session'larının snapshot akışlarını aldığı interface.
type Subscriber interface {
	// SubscribeMessages, kullanıcının taraf olduğu mesajların snapshot akışı.
	// ctx iptal edilince akış kapanır — iptal sonrası teslim yapılmaz.
	SubscribeMessages(ctx context.Context, userID string) <-chan Snapshot[models.Message]

	// SubscribeFollows, kullanıcıya dokunan follow satırlarının akışı.
	SubscribeFollows(ctx context.Context, userID string) <-chan Snapshot[models.FollowRelation]

	// SubscribeFavorites, owner'ın favorite satırlarının akışı.
	SubscribeFavorites(ctx context.Context, ownerID string) <-chan Snapshot[models.FavoriteRelation]

	// Version, adapter'ın güncel snapshot version'ını döner.
	Version() int64
}

// Options, adapter'ın timeout/retry davranışı.
type Options struct {
	// OpTimeout: tek bir store operasyonunun üst sınırı.
	// Aşılırsa mutation caller'a failed olarak raporlanır — sessizce düşmez.
	OpTimeout time.Duration

	// RetryAttempts: transport hatasında toplam deneme sayısı (ilk dahil).
	RetryAttempts int

	// RetryBackoff: denemeler arası taban bekleme; her denemede ikiye katlanır.
	RetryBackoff time.Duration
}

// DefaultOptions, makul varsayılanlar.
func DefaultOptions() Options {
	return Options{
		OpTimeout:     5 * time.Second,
		RetryAttempts: 3,
		RetryBackoff:  100 * time.Millisecond,
	}
}

// Adapter, store interface'lerinin repository'ler üzerindeki implementasyonu.
// MessageStore + SocialStore + FavoriteStore + ProfileStore + Subscriber'ın
// tamamını karşılar; main.go tek Adapter oluşturup service'lere dağıtır.
type Adapter struct {
	messages  repository.MessageRepository
	users     repository.UserRepository
	follows   repository.FollowRepository
	favorites repository.FavoriteRepository

	opts Options
	hub  *watchHub
}

// NewAdapter, constructor. Tüm repository'ler injection ile alınır.
func NewAdapter(
	messages repository.MessageRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	favorites repository.FavoriteRepository,
	opts Options,
) *Adapter {
	return &Adapter{
		messages:  messages,
		users:     users,
		follows:   follows,
		favorites: favorites,
		opts:      opts,
		hub:       newWatchHub(),
	}
}

// Version, güncel snapshot version'ını döner.
func (a *Adapter) Version() int64 {
	return a.hub.version()
}

// ─── MessageStore ───

// CreateMessage, mesajı yazar; başarıda her iki tarafın mesaj
// subscription'larını tetikler.
func (a *Adapter) CreateMessage(ctx context.Context, msg *models.Message) error {
	err := a.withRetry(ctx, func(c context.Context) error {
		return a.messages.Create(c, msg)
	})
	if err != nil {
		return err
	}
	a.hub.bumpAndNotify(collectionMessages, msg.SenderID, msg.ReceiverID)
	return nil
}

// MarkConversationRead, batch read-state geçişini yazar.
// Hiç satır etkilenmese bile başarıdır (idempotence); etkilenen satır
// varsa subscription tetiklenir — boş update için fold zorlamayız.
func (a *Adapter) MarkConversationRead(ctx context.Context, selfID, counterpartID string) (int64, error) {
	var affected int64
	err := a.withRetry(ctx, func(c context.Context) error {
		var innerErr error
		affected, innerErr = a.messages.MarkConversationRead(c, selfID, counterpartID)
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		a.hub.bumpAndNotify(collectionMessages, selfID, counterpartID)
	}
	return affected, nil
}

// ListConversation, bir thread'in one-shot okumasıdır.
func (a *Adapter) ListConversation(ctx context.Context, selfID, counterpartID string) ([]models.Message, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.messages.ListBetween(ctx, selfID, counterpartID)
}

// ─── SocialStore ───

func (a *Adapter) GetFollow(ctx context.Context, followerID, followedID string) (*models.FollowRelation, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.follows.GetByPair(ctx, followerID, followedID)
}

func (a *Adapter) CreateFollow(ctx context.Context, rel *models.FollowRelation) error {
	err := a.withRetry(ctx, func(c context.Context) error {
		return a.follows.Create(c, rel)
	})
	if err != nil {
		return err
	}
	a.hub.bumpAndNotify(collectionFollows, rel.FollowerID, rel.FollowedID)
	return nil
}

func (a *Adapter) SetFollowing(ctx context.Context, followerID, followedID string, following bool) error {
	err := a.withRetry(ctx, func(c context.Context) error {
		return a.follows.SetFollowing(c, followerID, followedID, following)
	})
	if err != nil {
		return err
	}
	a.hub.bumpAndNotify(collectionFollows, followerID, followedID)
	return nil
}

func (a *Adapter) ListFollowsFor(ctx context.Context, userID string) ([]models.FollowRelation, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.follows.ListForUser(ctx, userID)
}

// ─── FavoriteStore ───

func (a *Adapter) GetFavorite(ctx context.Context, ownerID, counterpartID string) (*models.FavoriteRelation, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.favorites.Get(ctx, ownerID, counterpartID)
}

func (a *Adapter) CreateFavorite(ctx context.Context, rel *models.FavoriteRelation) error {
	err := a.withRetry(ctx, func(c context.Context) error {
		return a.favorites.Create(c, rel)
	})
	if err != nil {
		return err
	}
	// Favorite tek yönlüdür — sadece owner'ın subscription'ı tetiklenir.
	a.hub.bumpAndNotify(collectionFavorites, rel.OwnerID)
	return nil
}

func (a *Adapter) SetFavorite(ctx context.Context, ownerID, counterpartID string, isMyFav bool) error {
	err := a.withRetry(ctx, func(c context.Context) error {
		return a.favorites.SetFav(c, ownerID, counterpartID, isMyFav)
	})
	if err != nil {
		return err
	}
	a.hub.bumpAndNotify(collectionFavorites, ownerID)
	return nil
}

func (a *Adapter) ListFavoritesFor(ctx context.Context, ownerID string) ([]models.FavoriteRelation, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.favorites.ListForOwner(ctx, ownerID)
}

// ─── ProfileStore ───

func (a *Adapter) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.users.GetByID(ctx, id)
}

func (a *Adapter) GetUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.users.GetByIDs(ctx, ids)
}

func (a *Adapter) ListOtherUsers(ctx context.Context, selfID string) ([]models.User, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.users.ListOthers(ctx, selfID)
}

// withTimeout, caller context'ine operasyon üst sınırını ekler.
func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.OpTimeout)
}
