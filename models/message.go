package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Message, iki kullanıcı arasındaki tek bir mesajı temsil eder.
// DB'deki "messages" tablosunun Go karşılığı.
//
// Mesaj immutable'dır — tek istisna IsRead alanıdır:
// false → true geçişi tam bir kez yaşanır, asla geri dönmez.
// Bu geçiş Read-State mutator'ın tek yazma hakkıdır (bkz. services/read_state_service.go).
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
	ReplyTo    *ReplyRef `json:"reply_to,omitempty"` // Nullable — yanıtlanan mesajın önizlemesi
}

// ReplyRef, yanıtlanan mesajın denormalize önizlemesidir.
// Asıl mesaja foreign key tutulmaz — orijinal kayıt silinse bile
// önizleme metni ve yazar adı mesajla birlikte yaşar.
type ReplyRef struct {
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
}

// CounterpartID, mesajın self olmayan tarafını döner.
//
// Conversation kimliği türetilmiştir: storage'da canonical bir
// conversation kaydı yoktur. İki kullanıcı arasındaki tüm mesajlar,
// {sender, receiver} çiftinin self olmayan elemanı ("counterpart")
// üzerinden gruplanarak her fold'da yeniden kurulur.
func (m *Message) CounterpartID(selfID string) string {
	if m.SenderID == selfID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Valid, mesajın fold'a katılabilecek kadar sağlam olup olmadığını söyler.
// CreatedAt'i olmayan bir kayıt gruplamaya giremez — fold sırasında
// atlanır, loglanır, fold devam eder (record-level hata fold'u öldürmez).
func (m *Message) Valid() bool {
	return m.ID != "" && m.SenderID != "" && m.ReceiverID != "" && !m.CreatedAt.IsZero()
}

// SendMessageRequest, yeni mesaj gönderme isteği.
type SendMessageRequest struct {
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	ReplyTo    *ReplyRef `json:"reply_to,omitempty"`
}

// Validate, SendMessageRequest'in geçerli olup olmadığını kontrol eder.
// İçerik 1-2000 karakter arası olmalı.
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.ReceiverID) == "" {
		return fmt.Errorf("receiver_id is required")
	}
	r.Text = strings.TrimSpace(r.Text)
	textLen := utf8.RuneCountInString(r.Text)
	if textLen < 1 {
		return fmt.Errorf("message text is required")
	}
	if textLen > 2000 {
		return fmt.Errorf("message text must be at most 2000 characters")
	}
	return nil
}
