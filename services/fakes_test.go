package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/notify"
	"github.com/akinalp/sohbet/store"
	"github.com/akinalp/sohbet/ws"
)

// fakeHub, gönderilen event'leri kaydeden EventPublisher implementasyonu.
type fakeHub struct {
	mu     sync.Mutex
	events map[string][]ws.Event
}

func newFakeHub() *fakeHub {
	return &fakeHub{events: make(map[string][]ws.Event)}
}

func (h *fakeHub) BroadcastToUser(userID string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[userID] = append(h.events[userID], event)
}

func (h *fakeHub) GetOnlineUserIDs() []string { return nil }

func (h *fakeHub) eventsFor(userID string) []ws.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ws.Event, len(h.events[userID]))
	copy(out, h.events[userID])
	return out
}

// fakeStore, adapter semantiğini bellekte taklit eder: her mutation
// version'ı artırır ve etkilenen kullanıcıların subscription'larına
// tam snapshot push'lar. Store interface'lerinin tamamını karşılar.
type fakeStore struct {
	mu        sync.Mutex
	ver       int64
	messages  []models.Message
	follows   []models.FollowRelation
	favorites []models.FavoriteRelation
	users     map[string]models.User

	msgSubs map[string][]chan store.Snapshot[models.Message]
	folSubs map[string][]chan store.Snapshot[models.FollowRelation]
	favSubs map[string][]chan store.Snapshot[models.FavoriteRelation]
}

func newFakeStore(users ...models.User) *fakeStore {
	f := &fakeStore{
		users:   make(map[string]models.User),
		msgSubs: make(map[string][]chan store.Snapshot[models.Message]),
		folSubs: make(map[string][]chan store.Snapshot[models.FollowRelation]),
		favSubs: make(map[string][]chan store.Snapshot[models.FavoriteRelation]),
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

// ─── Subscriber ───

func (f *fakeStore) SubscribeMessages(ctx context.Context, userID string) <-chan store.Snapshot[models.Message] {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan store.Snapshot[models.Message], 16)
	f.msgSubs[userID] = append(f.msgSubs[userID], ch)
	ch <- store.Snapshot[models.Message]{Version: f.ver, Records: f.messagesForLocked(userID)}
	return ch
}

func (f *fakeStore) SubscribeFollows(ctx context.Context, userID string) <-chan store.Snapshot[models.FollowRelation] {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan store.Snapshot[models.FollowRelation], 16)
	f.folSubs[userID] = append(f.folSubs[userID], ch)
	ch <- store.Snapshot[models.FollowRelation]{Version: f.ver, Records: f.followsForLocked(userID)}
	return ch
}

func (f *fakeStore) SubscribeFavorites(ctx context.Context, ownerID string) <-chan store.Snapshot[models.FavoriteRelation] {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan store.Snapshot[models.FavoriteRelation], 16)
	f.favSubs[ownerID] = append(f.favSubs[ownerID], ch)
	ch <- store.Snapshot[models.FavoriteRelation]{Version: f.ver, Records: f.favoritesForLocked(ownerID)}
	return ch
}

func (f *fakeStore) Version() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ver
}

func (f *fakeStore) messagesForLocked(userID string) []models.Message {
	var out []models.Message
	for _, m := range f.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeStore) followsForLocked(userID string) []models.FollowRelation {
	var out []models.FollowRelation
	for _, r := range f.follows {
		if r.FollowerID == userID || r.FollowedID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeStore) favoritesForLocked(ownerID string) []models.FavoriteRelation {
	var out []models.FavoriteRelation
	for _, r := range f.favorites {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeStore) pushMessagesLocked(userIDs ...string) {
	f.ver++
	for _, id := range userIDs {
		for _, ch := range f.msgSubs[id] {
			ch <- store.Snapshot[models.Message]{Version: f.ver, Records: f.messagesForLocked(id)}
		}
	}
}

func (f *fakeStore) pushFollowsLocked(userIDs ...string) {
	f.ver++
	for _, id := range userIDs {
		for _, ch := range f.folSubs[id] {
			ch <- store.Snapshot[models.FollowRelation]{Version: f.ver, Records: f.followsForLocked(id)}
		}
	}
}

func (f *fakeStore) pushFavoritesLocked(ownerID string) {
	f.ver++
	for _, ch := range f.favSubs[ownerID] {
		ch <- store.Snapshot[models.FavoriteRelation]{Version: f.ver, Records: f.favoritesForLocked(ownerID)}
	}
}

// ─── MessageStore ───

func (f *fakeStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	f.pushMessagesLocked(msg.SenderID, msg.ReceiverID)
	return nil
}

func (f *fakeStore) MarkConversationRead(ctx context.Context, selfID, counterpartID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for i := range f.messages {
		m := &f.messages[i]
		if m.SenderID == counterpartID && m.ReceiverID == selfID && !m.IsRead {
			m.IsRead = true
			affected++
		}
	}
	if affected > 0 {
		f.pushMessagesLocked(selfID, counterpartID)
	}
	return affected, nil
}

func (f *fakeStore) ListConversation(ctx context.Context, selfID, counterpartID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if (m.SenderID == selfID && m.ReceiverID == counterpartID) ||
			(m.SenderID == counterpartID && m.ReceiverID == selfID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ─── SocialStore ───

func (f *fakeStore) GetFollow(ctx context.Context, followerID, followedID string) (*models.FollowRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.follows {
		if r.FollowerID == followerID && r.FollowedID == followedID {
			cpy := r
			return &cpy, nil
		}
	}
	return nil, fmt.Errorf("%w: follow relation", pkg.ErrNotFound)
}

func (f *fakeStore) CreateFollow(ctx context.Context, rel *models.FollowRelation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, *rel)
	f.pushFollowsLocked(rel.FollowerID, rel.FollowedID)
	return nil
}

func (f *fakeStore) SetFollowing(ctx context.Context, followerID, followedID string, following bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.follows {
		r := &f.follows[i]
		if r.FollowerID == followerID && r.FollowedID == followedID {
			r.Following = following
			f.pushFollowsLocked(followerID, followedID)
			return nil
		}
	}
	return fmt.Errorf("%w: follow relation", pkg.ErrNotFound)
}

func (f *fakeStore) ListFollowsFor(ctx context.Context, userID string) ([]models.FollowRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.followsForLocked(userID), nil
}

// ─── FavoriteStore ───

func (f *fakeStore) GetFavorite(ctx context.Context, ownerID, counterpartID string) (*models.FavoriteRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.favorites {
		if r.OwnerID == ownerID && r.CounterpartID == counterpartID {
			cpy := r
			return &cpy, nil
		}
	}
	return nil, fmt.Errorf("%w: favorite relation", pkg.ErrNotFound)
}

func (f *fakeStore) CreateFavorite(ctx context.Context, rel *models.FavoriteRelation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites = append(f.favorites, *rel)
	f.pushFavoritesLocked(rel.OwnerID)
	return nil
}

func (f *fakeStore) SetFavorite(ctx context.Context, ownerID, counterpartID string, isMyFav bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.favorites {
		r := &f.favorites[i]
		if r.OwnerID == ownerID && r.CounterpartID == counterpartID {
			r.IsMyFav = isMyFav
			f.pushFavoritesLocked(ownerID)
			return nil
		}
	}
	return fmt.Errorf("%w: favorite relation", pkg.ErrNotFound)
}

func (f *fakeStore) ListFavoritesFor(ctx context.Context, ownerID string) ([]models.FavoriteRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favoritesForLocked(ownerID), nil
}

// ─── ProfileStore ───

func (f *fakeStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", pkg.ErrNotFound, id)
	}
	cpy := u
	return &cpy, nil
}

func (f *fakeStore) GetUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeStore) ListOtherUsers(ctx context.Context, selfID string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.ID != selfID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeNotifier, Notify çağrılarını kaydeder; fail=true ise hata döner.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notify.Notification
	fail  bool
}

func (n *fakeNotifier) Notify(_ context.Context, notification notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification)
	if n.fail {
		return fmt.Errorf("relay unavailable")
	}
	return nil
}

func (n *fakeNotifier) sent() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Notification, len(n.calls))
	copy(out, n.calls)
	return out
}
