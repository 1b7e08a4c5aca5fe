package services

import (
	"context"
	"log"
	"sync"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/store"
	"github.com/akinalp/sohbet/ws"
)

// Session, tek bir kullanıcının (viewer) canlı projection state'ini tutar.
//
// Her session üç snapshot akışına abone olur (mesaj, follow, favorite) ve
// gelen her snapshot'ı ilgili fold ile TAM olarak yeniden hesaplar. Tüm
// apply'lar tek bir goroutine'de (run loop) işlenir — aynı viewer için iki
// fold asla eşzamanlı çalışmaz, ara state dışarı sızmaz.
//
// Staleness guard: her akış için son uygulanan snapshot version'ı tutulur.
// Daha düşük version'lı bir snapshot gelirse uygulanmadan atılır ve
// loglanır (last snapshot wins). Version'lar global sayaçtan geldiği için
// akışlar arası karşılaştırma yapılmaz, her akış kendi son değerini bilir.
type Session struct {
	selfID string
	hub    ws.EventPublisher

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.RWMutex
	partials  map[string]*models.ConversationSummary
	social    SocialState
	favorites map[string]bool
	msgVer    int64
	followVer int64
	favVer    int64

	// Optimistic patch'ler: mutation ack'lendikten hemen sonra UI'ın
	// beklememesi için türetilmiş state'in ÜZERİNE okuma anında bindirilen
	// düzeltmeler. Fold çıktısını asla mutate etmezler ve ilgili akışın bir
	// sonraki gerçek fold'unda koşulsuz silinirler.
	readPatches map[string]bool // counterpartID → unread sıfır say
	favPatches  map[string]bool // counterpartID → favori durumunu bu değer say
	patchSeq    int64           // her patch'te artar — memo key'ine girer

	readyMu   sync.Mutex
	readySeen map[string]bool // akış adı → ilk snapshot'ı uygulandı
	ready     chan struct{}
}

// Akış adları — readiness takibi akış BAŞINA yapılır: aynı akıştan art
// arda gelen snapshot'lar gate'i ilerletmez.
const (
	streamMessages  = "messages"
	streamFollows   = "follows"
	streamFavorites = "favorites"
)

func newSession(parent context.Context, selfID string, sub store.Subscriber, hub ws.EventPublisher) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		selfID:      selfID,
		hub:         hub,
		cancel:      cancel,
		done:        make(chan struct{}),
		partials:    make(map[string]*models.ConversationSummary),
		social:      SocialState{Followed: map[string]bool{}, Followers: map[string]bool{}},
		favorites:   make(map[string]bool),
		readPatches: make(map[string]bool),
		favPatches:  make(map[string]bool),
		readySeen:   make(map[string]bool),
		ready:       make(chan struct{}),
		// -1: henüz hiç snapshot uygulanmadı. İlk snapshot v0 bile olsa
		// uygulanır; sonrasında eşit version'lı yeniden teslimler atılır.
		msgVer:    -1,
		followVer: -1,
		favVer:    -1,
	}

	msgCh := sub.SubscribeMessages(ctx, selfID)
	folCh := sub.SubscribeFollows(ctx, selfID)
	favCh := sub.SubscribeFavorites(ctx, selfID)

	go s.run(ctx, msgCh, folCh, favCh)
	return s
}

// run, session'ın tek apply goroutine'idir. Context iptal edildiğinde veya
// tüm akışlar kapandığında döner; iptal SONRASI hiçbir apply işlenmez.
func (s *Session) run(
	ctx context.Context,
	msgCh <-chan store.Snapshot[models.Message],
	folCh <-chan store.Snapshot[models.FollowRelation],
	favCh <-chan store.Snapshot[models.FavoriteRelation],
) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return

		case snap, ok := <-msgCh:
			if !ok {
				return
			}
			// Buffer'da bekleyen snapshot iptalden sonra gelebilir —
			// apply etmeden önce context'i tekrar kontrol et.
			if ctx.Err() != nil {
				return
			}
			s.applyMessages(snap)

		case snap, ok := <-folCh:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			s.applyFollows(snap)

		case snap, ok := <-favCh:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			s.applyFavorites(snap)
		}
	}
}

func (s *Session) applyMessages(snap store.Snapshot[models.Message]) {
	s.mu.Lock()
	// Eşit version da stale'dir: aynı snapshot'ın yeniden teslimi fold'u
	// tekrarlamamalı — tekrar uygulansa readPatches'i boşuna silerdi.
	if snap.Version <= s.msgVer {
		s.mu.Unlock()
		log.Printf("[session] stale message snapshot discarded: user=%s got=v%d have=v%d",
			s.selfID, snap.Version, s.msgVer)
		return
	}

	s.partials = FoldMessages(snap.Records, s.selfID)
	s.msgVer = snap.Version
	// Gerçek fold geldi — okuma patch'leri artık gereksiz.
	s.readPatches = make(map[string]bool)
	s.mu.Unlock()

	s.markStreamReady(streamMessages)
	s.pushRefresh()
}

func (s *Session) applyFollows(snap store.Snapshot[models.FollowRelation]) {
	s.mu.Lock()
	if snap.Version <= s.followVer {
		s.mu.Unlock()
		log.Printf("[session] stale follow snapshot discarded: user=%s got=v%d have=v%d",
			s.selfID, snap.Version, s.followVer)
		return
	}

	s.social = FoldFollows(snap.Records, s.selfID)
	s.followVer = snap.Version
	s.mu.Unlock()

	s.markStreamReady(streamFollows)
}

func (s *Session) applyFavorites(snap store.Snapshot[models.FavoriteRelation]) {
	s.mu.Lock()
	if snap.Version <= s.favVer {
		s.mu.Unlock()
		log.Printf("[session] stale favorite snapshot discarded: user=%s got=v%d have=v%d",
			s.selfID, snap.Version, s.favVer)
		return
	}

	s.favorites = FoldFavorites(snap.Records)
	s.favVer = snap.Version
	s.favPatches = make(map[string]bool)
	s.mu.Unlock()

	s.markStreamReady(streamFavorites)
	s.pushRefresh()
}

// markStreamReady, verilen akışın ilk snapshot'ının uygulandığını işler;
// üç FARKLI akış da en az bir kez fold'landığında ready channel'ını
// kapatır. Aynı akıştan gelen ikinci snapshot gate'i ilerletmez.
func (s *Session) markStreamReady(stream string) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	if s.readySeen[stream] {
		return
	}
	s.readySeen[stream] = true
	if len(s.readySeen) == 3 {
		close(s.ready)
	}
}

// AwaitReady, üç akışın da ilk snapshot'ı uygulanana kadar bekler.
// Cold start'ta handler'ın boş liste dönmemesi için kullanılır.
func (s *Session) AwaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-s.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pushRefresh, güncel rozet sayılarıyla conversation_refresh event'i gönderir.
// Client tam listeyi HTTP'den yeniden çeker; event tetikleyici + badge taşıyıcıdır.
func (s *Session) pushRefresh() {
	total, convs := s.UnreadBadge()
	s.hub.BroadcastToUser(s.selfID, ws.Event{
		Op:   ws.OpConversationRefresh,
		Data: ws.RefreshData{TotalUnread: total, UnreadConversations: convs},
	})
}

// ─── Okuma erişimleri (kopyalar döner, patch'ler bindirilmiş halde) ───

// ConversationPartials, kısmi özetlerin kopyasını ve memo için versiyon
// bilgisini döner. readPatches bindirilmiştir: okundu sayılan
// counterpart'ların UnreadCount'u sıfırdır. Dönen map caller'a aittir.
func (s *Session) ConversationPartials() (map[string]models.ConversationSummary, int64, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.ConversationSummary, len(s.partials))
	for cp, sum := range s.partials {
		cpy := *sum
		if s.readPatches[cp] {
			cpy.UnreadCount = 0
		}
		out[cp] = cpy
	}
	return out, s.msgVer, s.patchSeq
}

// FavoriteSet, aktif favori counterpart kümesinin kopyasını döner
// (favPatches bindirilmiş).
func (s *Session) FavoriteSet() (map[string]bool, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.favorites))
	for cp := range s.favorites {
		out[cp] = true
	}
	for cp, fav := range s.favPatches {
		if fav {
			out[cp] = true
		} else {
			delete(out, cp)
		}
	}
	return out, s.favVer
}

// Social, takip kümelerinin kopyasını döner.
func (s *Session) Social() SocialState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := SocialState{
		Followed:  make(map[string]bool, len(s.social.Followed)),
		Followers: make(map[string]bool, len(s.social.Followers)),
	}
	for id := range s.social.Followed {
		out.Followed[id] = true
	}
	for id := range s.social.Followers {
		out.Followers[id] = true
	}
	return out
}

// UnreadBadge, toplam okunmamış mesaj sayısını ve okunmamışı olan
// konuşma sayısını döner (patch'ler dahil).
func (s *Session) UnreadBadge() (totalUnread, unreadConversations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for cp, sum := range s.partials {
		if s.readPatches[cp] {
			continue
		}
		if sum.UnreadCount > 0 {
			totalUnread += sum.UnreadCount
			unreadConversations++
		}
	}
	return totalUnread, unreadConversations
}

// ─── Optimistic patch girişleri ───

// ApplyReadPatch, counterpart'ın okunmamışlarını bir sonraki mesaj
// fold'una kadar sıfır sayar. Mutation store'a ack'lendikten SONRA
// çağrılmalıdır — patch tahmin değil, onaylanmış sonucun ön gösterimidir.
func (s *Session) ApplyReadPatch(counterpartID string) {
	s.mu.Lock()
	s.readPatches[counterpartID] = true
	s.patchSeq++
	s.mu.Unlock()

	s.pushRefresh()
}

// ApplyFavoritePatch, counterpart'ın favori durumunu bir sonraki favorite
// fold'una kadar verilen değer sayar.
func (s *Session) ApplyFavoritePatch(counterpartID string, isMyFav bool) {
	s.mu.Lock()
	s.favPatches[counterpartID] = isMyFav
	s.patchSeq++
	s.mu.Unlock()
}

// Close, session'ı iptal eder ve run loop'un dönmesini bekler.
// Dönüşten sonra hiçbir apply işlenmez.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

// SessionManager, viewer başına tek session garantisi verir ve yaşam
// döngülerini yönetir. Session'lar lazy kurulur: ilk liste isteği veya
// WS bağlantısı session'ı başlatır.
type SessionManager struct {
	sub store.Subscriber
	hub ws.EventPublisher

	mu       sync.Mutex
	sessions map[string]*Session
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
}

func NewSessionManager(sub store.Subscriber, hub ws.EventPublisher) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		sub:      sub,
		hub:      hub,
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Get, kullanıcının session'ını döner; yoksa kurar. Manager kapandıktan
// sonra (shutdown ile yarışan istek) yeni canlı session açılmaz — kapalı
// bir session döner: AwaitReady hemen context.Canceled verir, patch
// girişleri zararsız no-op'tur.
func (m *SessionManager) Get(selfID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[selfID]; ok {
		return s
	}

	if m.closed {
		log.Printf("[session] manager closed, refusing new session for user %s", selfID)
		return newClosedSession(selfID, m.hub)
	}

	s := newSession(m.ctx, selfID, m.sub, m.hub)
	m.sessions[selfID] = s
	log.Printf("[session] started for user %s", selfID)
	return s
}

// newClosedSession, hiç aboneliği olmayan, done'u baştan kapalı bir
// session kurar. Accessor'lar boş kopyalar döner, AwaitReady bekletmez.
func newClosedSession(selfID string, hub ws.EventPublisher) *Session {
	done := make(chan struct{})
	close(done)

	return &Session{
		selfID:      selfID,
		hub:         hub,
		cancel:      func() {},
		done:        done,
		partials:    make(map[string]*models.ConversationSummary),
		social:      SocialState{Followed: map[string]bool{}, Followers: map[string]bool{}},
		favorites:   make(map[string]bool),
		readPatches: make(map[string]bool),
		favPatches:  make(map[string]bool),
		readySeen:   make(map[string]bool),
		ready:       make(chan struct{}),
		msgVer:      -1,
		followVer:   -1,
		favVer:      -1,
	}
}

// Close, tek bir kullanıcının session'ını kapatır (ör. tüm tab'ları kapandı).
func (m *SessionManager) Close(selfID string) {
	m.mu.Lock()
	s, ok := m.sessions[selfID]
	if ok {
		delete(m.sessions, selfID)
	}
	m.mu.Unlock()

	if ok {
		s.Close()
		log.Printf("[session] closed for user %s", selfID)
	}
}

// CloseAll, tüm session'ları kapatır (graceful shutdown).
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	m.cancel()
	for _, s := range sessions {
		<-s.done
	}
	log.Printf("[session] all sessions closed (%d)", len(sessions))
}
