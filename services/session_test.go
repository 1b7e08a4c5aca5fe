package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/store"
	"github.com/akinalp/sohbet/ws"
)

// manualSub, snapshot'ları testin elle push'ladığı Subscriber implementasyonu.
// Version sıralaması ve staleness senaryoları için kullanılır.
type manualSub struct {
	msgCh chan store.Snapshot[models.Message]
	folCh chan store.Snapshot[models.FollowRelation]
	favCh chan store.Snapshot[models.FavoriteRelation]
}

func newManualSub() *manualSub {
	return &manualSub{
		msgCh: make(chan store.Snapshot[models.Message], 16),
		folCh: make(chan store.Snapshot[models.FollowRelation], 16),
		favCh: make(chan store.Snapshot[models.FavoriteRelation], 16),
	}
}

func (s *manualSub) SubscribeMessages(ctx context.Context, userID string) <-chan store.Snapshot[models.Message] {
	return s.msgCh
}

func (s *manualSub) SubscribeFollows(ctx context.Context, userID string) <-chan store.Snapshot[models.FollowRelation] {
	return s.folCh
}

func (s *manualSub) SubscribeFavorites(ctx context.Context, ownerID string) <-chan store.Snapshot[models.FavoriteRelation] {
	return s.favCh
}

func (s *manualSub) Version() int64 { return 0 }

func (s *manualSub) pushInitial() {
	s.msgCh <- store.Snapshot[models.Message]{Version: 1}
	s.folCh <- store.Snapshot[models.FollowRelation]{Version: 1}
	s.favCh <- store.Snapshot[models.FavoriteRelation]{Version: 1}
}

func startTestSession(t *testing.T, sub *manualSub, hub ws.EventPublisher) *Session {
	t.Helper()

	sess := newSession(context.Background(), "me", sub, hub)
	t.Cleanup(sess.Close)
	return sess
}

func awaitReady(t *testing.T, sess *Session) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.AwaitReady(ctx))
}

func TestSessionAppliesSnapshotsSequentially(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := startTestSession(t, sub, hub)

	sub.pushInitial()
	awaitReady(t, sess)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 2,
		Records: []models.Message{msgAt("m1", "alice", "me", "selam", base, false)},
	}

	require.Eventually(t, func() bool {
		partials, ver, _ := sess.ConversationPartials()
		return ver == 2 && len(partials) == 1
	}, 2*time.Second, 10*time.Millisecond)

	partials, _, _ := sess.ConversationPartials()
	assert.Equal(t, 1, partials["alice"].UnreadCount)
}

func TestSessionDiscardsStaleSnapshot(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := startTestSession(t, sub, hub)

	sub.pushInitial()
	awaitReady(t, sess)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// v7 önce uygulanır...
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 7,
		Records: []models.Message{msgAt("m7", "alice", "me", "yeni", base, false)},
	}
	require.Eventually(t, func() bool {
		_, ver, _ := sess.ConversationPartials()
		return ver == 7
	}, 2*time.Second, 10*time.Millisecond)

	// ...sonra geciken v5 gelir — uygulanmadan atılmalı.
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 5,
		Records: []models.Message{msgAt("m5", "bob", "me", "eski", base, false)},
	}

	time.Sleep(100 * time.Millisecond)
	partials, ver, _ := sess.ConversationPartials()
	assert.Equal(t, int64(7), ver)
	assert.Contains(t, partials, "alice")
	assert.NotContains(t, partials, "bob")
}

func TestSessionReadPatchClearedByNextFold(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := startTestSession(t, sub, hub)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	unreadMsg := msgAt("m1", "alice", "me", "selam", base, false)

	sub.msgCh <- store.Snapshot[models.Message]{Version: 1, Records: []models.Message{unreadMsg}}
	sub.folCh <- store.Snapshot[models.FollowRelation]{Version: 1}
	sub.favCh <- store.Snapshot[models.FavoriteRelation]{Version: 1}
	awaitReady(t, sess)

	// Patch: alice okundu sayılır.
	sess.ApplyReadPatch("alice")
	partials, _, _ := sess.ConversationPartials()
	assert.Equal(t, 0, partials["alice"].UnreadCount)

	total, convs := sess.UnreadBadge()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, convs)

	// Gerçek fold hâlâ okunmamış diyorsa patch silinir — fold kazanır.
	sub.msgCh <- store.Snapshot[models.Message]{Version: 2, Records: []models.Message{unreadMsg}}
	require.Eventually(t, func() bool {
		p, ver, _ := sess.ConversationPartials()
		return ver == 2 && p["alice"].UnreadCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionPushesRefreshOnMessageFold(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := startTestSession(t, sub, hub)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 1,
		Records: []models.Message{msgAt("m1", "alice", "me", "selam", base, false)},
	}
	sub.folCh <- store.Snapshot[models.FollowRelation]{Version: 1}
	sub.favCh <- store.Snapshot[models.FavoriteRelation]{Version: 1}
	awaitReady(t, sess)

	require.Eventually(t, func() bool {
		for _, e := range hub.eventsFor("me") {
			if e.Op == ws.OpConversationRefresh {
				data, ok := e.Data.(ws.RefreshData)
				return ok && data.TotalUnread == 1 && data.UnreadConversations == 1
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionReadyRequiresAllThreeStreams(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := startTestSession(t, sub, hub)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// İki mesaj snapshot'ı + bir follow snapshot'ı = üç apply, ama sadece
	// iki farklı akış. Favorites henüz fold'lanmadan ready olmamalı —
	// aksi halde liste herkese IsFavorite=false servis ederdi.
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 1,
		Records: []models.Message{msgAt("m1", "alice", "me", "selam", base, false)},
	}
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 2,
		Records: []models.Message{msgAt("m1", "alice", "me", "selam", base, false)},
	}
	sub.folCh <- store.Snapshot[models.FollowRelation]{Version: 3}

	shortCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.Error(t, sess.AwaitReady(shortCtx), "favorites fold'lanmadan ready olmamali")

	// Üçüncü akışın ilk snapshot'ı gelince gate açılır ve favori kümesi
	// gerçekten fold'lanmış olur.
	sub.favCh <- store.Snapshot[models.FavoriteRelation]{
		Version: 4,
		Records: []models.FavoriteRelation{{OwnerID: "me", CounterpartID: "alice", IsMyFav: true}},
	}
	awaitReady(t, sess)

	favs, _ := sess.FavoriteSet()
	assert.True(t, favs["alice"])
}

func TestSessionDiscardsEqualVersionRedelivery(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := startTestSession(t, sub, hub)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	unreadMsg := msgAt("m1", "alice", "me", "selam", base, false)

	sub.msgCh <- store.Snapshot[models.Message]{Version: 1, Records: []models.Message{unreadMsg}}
	sub.folCh <- store.Snapshot[models.FollowRelation]{Version: 1}
	sub.favCh <- store.Snapshot[models.FavoriteRelation]{Version: 1}
	awaitReady(t, sess)

	sess.ApplyReadPatch("alice")

	// Aynı version'ın yeniden teslimi (register ↔ bump yarışı) fold'u
	// tekrarlamamalı — tekrarlasaydı patch silinir, rozet geri gelirdi.
	sub.msgCh <- store.Snapshot[models.Message]{Version: 1, Records: []models.Message{unreadMsg}}

	time.Sleep(100 * time.Millisecond)
	total, convs := sess.UnreadBadge()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, convs)
}

func TestSessionManagerGetAfterCloseAll(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	mgr := NewSessionManager(sub, hub)

	mgr.CloseAll()

	// Shutdown ile yarışan istek canlı session açamaz: dönen session
	// beklemeden iptal raporlar, patch girişleri panic'siz no-op'tur.
	sess := mgr.Get("me")
	require.NotNil(t, sess)

	err := sess.AwaitReady(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	sess.ApplyReadPatch("alice")
	sess.ApplyFavoritePatch("alice", true)

	mgr.mu.Lock()
	assert.Empty(t, mgr.sessions, "kapali manager yeni session kaydetmemeli")
	mgr.mu.Unlock()
}

func TestSessionCloseStopsApplies(t *testing.T) {
	sub := newManualSub()
	hub := newFakeHub()
	sess := newSession(context.Background(), "me", sub, hub)

	sub.pushInitial()
	awaitReady(t, sess)

	sess.Close()

	// Close döndükten sonra gelen snapshot asla uygulanmaz.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sub.msgCh <- store.Snapshot[models.Message]{
		Version: 9,
		Records: []models.Message{msgAt("m9", "alice", "me", "geç kaldı", base, false)},
	}

	time.Sleep(100 * time.Millisecond)
	partials, ver, _ := sess.ConversationPartials()
	assert.Equal(t, int64(1), ver)
	assert.Empty(t, partials)
}
