package models

import "time"

// MessageDirection, conversation'daki son mesajın yönü.
type MessageDirection string

const (
	DirectionSent     MessageDirection = "sent"     // Son mesajı self gönderdi
	DirectionReceived MessageDirection = "received" // Son mesajı counterpart gönderdi
)

// ConversationSummary, tek bir counterpart ile olan konuşmanın türetilmiş özeti.
//
// Ephemeral'dır: her snapshot fold'unda sıfırdan kurulur, asla incremental
// patch'lenmez. Bu verimlilikten feragat eder ama out-of-order delivery
// altında doğruluğu garanti eder — kısmi decrement'lerin yarattığı
// drift sınıfı hatalar baştan imkânsızlaşır.
//
// Invariant: UnreadCount == |{m : m.SenderID == CounterpartID,
// m.ReceiverID == self, m.IsRead == false}|
type ConversationSummary struct {
	CounterpartID   string           `json:"counterpart_id"`
	Name            string           `json:"name"`
	AvatarURL       *string          `json:"avatar_url"`
	LastMessageID   string           `json:"last_message_id"`
	LastMessageText string           `json:"last_message_text"`
	LastMessageTime time.Time        `json:"last_message_time"`
	Direction       MessageDirection `json:"direction"`
	Preview         string           `json:"preview"` // "You: ..." veya "<name>: ..."
	UnreadCount     int              `json:"unread_count"`
	IsFavorite      bool             `json:"is_favorite"`
}

// ConversationList, UI'ın render ettiği nihai sıralı görünüm.
//
// Sıralama garantisi: LastMessageTime descending; eşit timestamp'lerde
// LastMessageID descending (deterministik secondary key — sıralama
// implementation-defined kalmasın diye).
//
// İki unread toplamı birden taşınır çünkü kaynak davranışta iki farklı
// sayım politikası vardır; invariant taşıyan sayı TotalUnread'dir
// (per-message sayım), UnreadConversations sadece "kaç konuşmada okunmamış
// var" rozetidir.
type ConversationList struct {
	Conversations       []ConversationSummary `json:"conversations"`
	TotalUnread         int                   `json:"total_unread"`
	UnreadConversations int                   `json:"unread_conversations"`
}

// ListOptions, conversation list sorgusunun filtreleri.
type ListOptions struct {
	Search        string // Case-insensitive substring, name üzerinde
	FavoritesOnly bool
}
