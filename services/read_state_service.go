package services

import (
	"context"
	"fmt"
	"log"

	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/store"
)

// ReadStateService, okundu işaretleme iş mantığı interface'i.
//
// Okuma işareti fold içinden tetiklenmez — fold'lar saf kalır. Bunun
// yerine view katmanı (thread açıldığında) veya client (explicit buton)
// bu servisi çağırır; mutation store'dan geçer ve bir sonraki mesaj
// fold'u okunmuş halleri doğal olarak yansıtır. Aradaki boşluğu
// optimistic read patch kapatır.
type ReadStateService interface {
	// MarkConversationRead, counterpart'tan gelen tüm okunmamışları
	// okundu yapar. Idempotent: okunmamış yoksa no-op'tur, hata değildir.
	MarkConversationRead(ctx context.Context, selfID, counterpartID string) error
}

type readStateService struct {
	msgs     store.MessageStore
	sessions *SessionManager
}

func NewReadStateService(msgs store.MessageStore, sessions *SessionManager) ReadStateService {
	return &readStateService{
		msgs:     msgs,
		sessions: sessions,
	}
}

func (s *readStateService) MarkConversationRead(ctx context.Context, selfID, counterpartID string) error {
	if counterpartID == "" || counterpartID == selfID {
		return fmt.Errorf("%w: invalid counterpart", pkg.ErrBadRequest)
	}

	affected, err := s.msgs.MarkConversationRead(ctx, selfID, counterpartID)
	if err != nil {
		return err
	}

	if affected > 0 {
		log.Printf("[read-state] marked read: user=%s counterpart=%s count=%d",
			selfID, counterpartID, affected)
	}

	// Store ack'ledi — badge'in bir sonraki fold'u beklememesi için
	// session'a optimistic patch uygula.
	s.sessions.Get(selfID).ApplyReadPatch(counterpartID)
	return nil
}
