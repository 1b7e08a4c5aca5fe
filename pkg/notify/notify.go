// Package notify, mesaj bildirimlerinin dış dünyaya iletilmesi için
// soyutlama katmanı sağlar.
//
// Notifier interface'i ile teslim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend üzerinden email relay'dir; teslimin
// gerçekte nasıl gösterildiği (push, badge, banner) bu servisin dışındadır.
//
// Bu paket dışarıya üç şey sunar:
// 1. Notifier interface — service'ler buna bağımlı olur
// 2. NewResendNotifier constructor — main.go'da wire-up için
// 3. NewLogNotifier — relay yapılandırılmamışsa log-only fallback
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"
)

// Notification, tek bir bildirimin içeriği.
// Title gönderenin görünen adıdır, Body mesaj metnidir.
type Notification struct {
	UserID string // alıcı
	Title  string
	Body   string
}

// Notifier, bildirim teslimi için interface.
// Service katmanı bu interface'e bağımlıdır, concrete implementasyona değil.
//
// At-most-once sözleşmesi caller tarafındadır: Notify mesaj store'a
// ack'lendikten sonra EN FAZLA bir kez çağrılır. Teslim hatası mesajı
// geri almaz — caller hatayı loglar ve devam eder.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// resendNotifier, Resend API ile email relay yapan Notifier implementasyonu.
// Alıcı adresi userID'den türetilir: {userID}@{inboxDomain}. Gateway her
// kullanıcı için bu domain altında bir relay inbox'ı yönetir.
type resendNotifier struct {
	client      *resend.Client
	fromEmail   string // Gönderici adresi (ör: notify@sohbet.app)
	inboxDomain string // Relay inbox domain'i (ör: inbox.sohbet.app)
}

// NewResendNotifier, Resend API client'ı ile yeni bir Notifier oluşturur.
//
// apiKey: Resend dashboard'dan alınan API key (re_xxxxxxxx formatında).
// fromEmail: Gönderici adresi — Resend'de doğrulanmış domain altında olmalı.
// inboxDomain: Kullanıcı relay inbox'larının domain'i.
func NewResendNotifier(apiKey, fromEmail, inboxDomain string) Notifier {
	return &resendNotifier{
		client:      resend.NewClient(apiKey),
		fromEmail:   fromEmail,
		inboxDomain: inboxDomain,
	}
}

func (s *resendNotifier) Notify(ctx context.Context, n Notification) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("sohbet <%s>", s.fromEmail),
		To:      []string{fmt.Sprintf("%s@%s", n.UserID, s.inboxDomain)},
		Subject: n.Title,
		Text:    n.Body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to deliver notification for user %s: %w", n.UserID, err)
	}
	return nil
}

// logNotifier, teslimi sadece loglayan Notifier.
// RESEND_API_KEY yapılandırılmamışsa (local development) kullanılır.
type logNotifier struct{}

// NewLogNotifier, log-only Notifier döner.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("[notify] user=%s title=%q body=%q", n.UserID, n.Title, n.Body)
	return nil
}
