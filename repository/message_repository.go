// Package repository — MessageRepository interface.
//
// Mesaj tablosu için ham veri erişim soyutlaması.
// Interface Segregation: her repository tek bir collection'ı kapsar.
// Retry, timeout ve snapshot versiyonlama BURADA DEĞİL — o concern'ler
// store adapter'ındadır (bkz. store paketi). Repository sadece SQL bilir.
package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// MessageRepository, mesaj veritabanı işlemleri için interface.
type MessageRepository interface {
	// Create, yeni bir mesaj kaydı ekler.
	Create(ctx context.Context, msg *models.Message) error

	// ListForUser, kullanıcının taraf olduğu TÜM mesajları döner
	// (sender veya receiver). Subscription snapshot'larının kaynağıdır —
	// diff değil, her seferinde tam küme döner.
	ListForUser(ctx context.Context, userID string) ([]models.Message, error)

	// ListBetween, iki kullanıcı arasındaki mesajları created_at artan
	// sırayla döner (conversation thread görünümü).
	ListBetween(ctx context.Context, selfID, counterpartID string) ([]models.Message, error)

	// MarkConversationRead, counterpart'tan self'e gelen okunmamış tüm
	// mesajları is_read=true yapar. Etkilenen satır sayısını döner.
	// Idempotent — zaten okunmuş mesajlar için no-op.
	MarkConversationRead(ctx context.Context, selfID, counterpartID string) (int64, error)
}
