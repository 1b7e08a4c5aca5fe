package services

import (
	"log"

	"github.com/akinalp/sohbet/models"
)

// Bu dosyadaki fold fonksiyonları saf (pure) türetme fonksiyonlarıdır:
// ham kayıt dizisini alır, türetilmiş state döndürür. Hiçbir I/O veya
// yan etki içermezler; her snapshot'ta baştan sona yeniden hesaplanır,
// artımlı (incremental) güncelleme yapılmaz. Okuma işareti gibi yan
// etkiler burada değil, ReadStateService üzerinden tetiklenir.

// SocialState, takip ilişkilerinin bir kullanıcı açısından türetilmiş hali.
// Followed sadece aktif takipleri içerir; pasif (soft-toggle ile kapatılmış)
// satırlar fold sırasında elenir ama store'da silinmeden durur.
type SocialState struct {
	Followed  map[string]bool // selfID'nin aktif olarak takip ettikleri
	Followers map[string]bool // selfID'yi aktif olarak takip edenler
}

// FoldMessages, mesaj kayıtlarını karşı tarafa (counterpart) göre gruplayıp
// kısmi konuşma özetleri üretir. "Kısmi" çünkü isim, avatar ve favori
// bilgisi burada yoktur — onları liste kurucusu profil ve favori
// state'leriyle birleştirir.
//
// Son mesaj seçimi: en büyük CreatedAt kazanır; eşitlikte mesaj id'si
// sözlüksel olarak büyük olan kazanır (deterministik tie-break).
// Geçersiz kayıtlar (boş id, boş taraf, sıfır zaman) loglanıp atlanır;
// tek bozuk satır tüm projeksiyonu düşürmez.
func FoldMessages(msgs []models.Message, selfID string) map[string]*models.ConversationSummary {
	out := make(map[string]*models.ConversationSummary)
	skipped := 0

	for i := range msgs {
		m := &msgs[i]
		if !m.Valid() {
			skipped++
			continue
		}

		if m.SenderID != selfID && m.ReceiverID != selfID {
			// selfID'yi hiç içermeyen kayıt — bu kullanıcının listesine
			// ait değil. (CounterpartID böyle bir kayıt için yanıltıcı
			// şekilde sender'ı dönerdi.)
			skipped++
			continue
		}

		cp := m.CounterpartID(selfID)
		if cp == "" || cp == selfID {
			// Kendine mesaj — konuşma değil.
			skipped++
			continue
		}

		sum, ok := out[cp]
		if !ok {
			sum = &models.ConversationSummary{CounterpartID: cp}
			out[cp] = sum
		}

		if m.ReceiverID == selfID && !m.IsRead {
			sum.UnreadCount++
		}

		if newerMessage(m, sum) {
			sum.LastMessageID = m.ID
			sum.LastMessageText = m.Text
			sum.LastMessageTime = m.CreatedAt
			if m.SenderID == selfID {
				sum.Direction = models.DirectionSent
			} else {
				sum.Direction = models.DirectionReceived
			}
		}
	}

	if skipped > 0 {
		log.Printf("[fold] %d invalid message record(s) skipped for user %s", skipped, selfID)
	}
	return out
}

// newerMessage, m'in mevcut özetteki son mesajdan daha yeni olup
// olmadığını söyler. Özet henüz boşsa her mesaj "daha yeni"dir.
func newerMessage(m *models.Message, sum *models.ConversationSummary) bool {
	if sum.LastMessageID == "" {
		return true
	}
	if m.CreatedAt.After(sum.LastMessageTime) {
		return true
	}
	if m.CreatedAt.Equal(sum.LastMessageTime) && m.ID > sum.LastMessageID {
		return true
	}
	return false
}

// FoldFollows, takip kayıtlarından selfID açısından iki küme türetir.
// Soft-toggle gereği Following=false satırlar atlanır; NoRelation ile
// Unfollowed fold çıktısında ayırt edilmez (ikisi de kümede yoktur).
func FoldFollows(rels []models.FollowRelation, selfID string) SocialState {
	state := SocialState{
		Followed:  make(map[string]bool),
		Followers: make(map[string]bool),
	}

	for i := range rels {
		r := &rels[i]
		if !r.Following {
			continue
		}
		switch {
		case r.FollowerID == selfID:
			state.Followed[r.FollowedID] = true
		case r.FollowedID == selfID:
			state.Followers[r.FollowerID] = true
		}
	}
	return state
}

// FoldFavorites, favori kayıtlarından aktif favori counterpart kümesini
// türetir. Takipteki gibi soft-toggle: IsMyFav=false satırlar elenir.
func FoldFavorites(rels []models.FavoriteRelation) map[string]bool {
	out := make(map[string]bool)
	for i := range rels {
		if rels[i].IsMyFav {
			out[rels[i].CounterpartID] = true
		}
	}
	return out
}
