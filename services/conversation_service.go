package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg/cache"
	"github.com/akinalp/sohbet/store"
)

// ConversationService, konuşma listesi kurma iş mantığı interface'i.
//
// Liste üç türetilmiş state'in birleşimidir: mesaj fold'u (kısmi özetler),
// favori kümesi ve profil lookup'ı. Kurulum saf bir dönüşümdür; aynı
// snapshot version'ları ve aynı filtreler için sonuç memoize edilir.
type ConversationService interface {
	GetConversationList(ctx context.Context, selfID string, opts models.ListOptions) (*models.ConversationList, error)
}

type conversationService struct {
	sessions *SessionManager
	profiles store.ProfileStore

	// memo: key = selfID + snapshot version'ları + patch sayacı + filtreler.
	// Version değişince key değişir — eski entry'ler TTL ile düşer,
	// invalidation gerekmez.
	memo *cache.TTLCache[string, *models.ConversationList]
}

func NewConversationService(
	sessions *SessionManager,
	profiles store.ProfileStore,
	memo *cache.TTLCache[string, *models.ConversationList],
) ConversationService {
	return &conversationService{
		sessions: sessions,
		profiles: profiles,
		memo:     memo,
	}
}

func (s *conversationService) GetConversationList(ctx context.Context, selfID string, opts models.ListOptions) (*models.ConversationList, error) {
	sess := s.sessions.Get(selfID)
	if err := sess.AwaitReady(ctx); err != nil {
		return nil, fmt.Errorf("projection not ready for user %s: %w", selfID, err)
	}

	partials, msgVer, patchSeq := sess.ConversationPartials()
	favs, favVer := sess.FavoriteSet()

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	key := fmt.Sprintf("%s|v%d.%d.%d|q:%s|f:%t", selfID, msgVer, favVer, patchSeq, search, opts.FavoritesOnly)
	if cached, ok := s.memo.Get(key); ok {
		return cached, nil
	}

	list, err := s.build(ctx, selfID, partials, favs, search, opts.FavoritesOnly)
	if err != nil {
		return nil, err
	}

	s.memo.Set(key, list)
	return list, nil
}

// build, kısmi özetleri profil ve favori bilgisiyle zenginleştirip
// filtrelenmiş, sıralı listeyi kurar.
//
// Rozet sayıları (TotalUnread, UnreadConversations) filtre ÖNCESİ
// hesaplanır — arama yapmak veya favorilere daralmak badge'i değiştirmez.
func (s *conversationService) build(
	ctx context.Context,
	selfID string,
	partials map[string]models.ConversationSummary,
	favs map[string]bool,
	search string,
	favoritesOnly bool,
) (*models.ConversationList, error) {
	ids := make([]string, 0, len(partials))
	for cp := range partials {
		ids = append(ids, cp)
	}

	users, err := s.profiles.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	list := &models.ConversationList{
		Conversations: make([]models.ConversationSummary, 0, len(partials)),
	}

	for cp, sum := range partials {
		// Rozet, profil lookup'ından da önce sayılır: session'ın WS
		// push'unda taşıdığı rozetle (UnreadBadge) aynı kümeyi görür,
		// iki kanal aynı state için farklı sayı göstermez.
		if sum.UnreadCount > 0 {
			list.TotalUnread += sum.UnreadCount
			list.UnreadConversations++
		}

		user, ok := users[cp]
		if !ok {
			// Profili silinmiş/bulunamayan counterpart listeye girmez —
			// isimsiz satır göstermektense atlanır ve loglanır.
			log.Printf("[conversation] counterpart profile missing, dropping: user=%s counterpart=%s", selfID, cp)
			continue
		}

		sum.Name = user.Name
		sum.AvatarURL = user.AvatarURL
		sum.IsFavorite = favs[cp]
		if sum.Direction == models.DirectionSent {
			sum.Preview = "You: " + sum.LastMessageText
		} else {
			sum.Preview = user.Name + ": " + sum.LastMessageText
		}

		if favoritesOnly && !sum.IsFavorite {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sum.Name), search) {
			continue
		}

		list.Conversations = append(list.Conversations, sum)
	}

	// En yeni mesaj en üstte; eşit zamanda mesaj id'si büyük olan önce
	// (fold'daki tie-break ile aynı yön — sıralama deterministiktir).
	sort.Slice(list.Conversations, func(i, j int) bool {
		a, b := list.Conversations[i], list.Conversations[j]
		if !a.LastMessageTime.Equal(b.LastMessageTime) {
			return a.LastMessageTime.After(b.LastMessageTime)
		}
		return a.LastMessageID > b.LastMessageID
	})

	return list, nil
}
