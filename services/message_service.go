package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/notify"
	"github.com/akinalp/sohbet/store"
	"github.com/akinalp/sohbet/ws"
)

// MessageService, mesaj gönderme ve thread okuma iş mantığı interface'i.
type MessageService interface {
	// SendMessage, mesajı kalıcılaştırır; store ack'ledikten SONRA alıcıya
	// en fazla bir kez bildirim gönderir. Bildirim hatası mesajı geri almaz.
	SendMessage(ctx context.Context, senderID string, req *models.SendMessageRequest) (*models.Message, error)

	// GetThread, iki kullanıcı arasındaki mesajları kronolojik döner.
	GetThread(ctx context.Context, selfID, counterpartID string) ([]models.Message, error)
}

type messageService struct {
	msgs     store.MessageStore
	profiles store.ProfileStore
	notifier notify.Notifier
	hub      ws.EventPublisher
}

func NewMessageService(
	msgs store.MessageStore,
	profiles store.ProfileStore,
	notifier notify.Notifier,
	hub ws.EventPublisher,
) MessageService {
	return &messageService{
		msgs:     msgs,
		profiles: profiles,
		notifier: notifier,
		hub:      hub,
	}
}

func (s *messageService) SendMessage(ctx context.Context, senderID string, req *models.SendMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}
	if req.ReceiverID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", pkg.ErrBadRequest)
	}

	// Alıcı gerçek bir kullanıcı mı? (ErrNotFound aynen yukarı çıkar)
	if _, err := s.profiles.GetUser(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	sender, err := s.profiles.GetUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		CreatedAt:  time.Now().UTC(),
		IsRead:     false,
		ReplyTo:    req.ReplyTo,
	}

	if err := s.msgs.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	// Bu noktadan sonra mesaj kalıcıdır — aşağıdaki adımların hatası
	// caller'a dönmez.

	// Her iki tarafın açık tab'larına anlık event. Konuşma listesi
	// refresh'i ayrıca session fold'undan gelir; bu event açık thread'in
	// beklemeden güncellenmesi içindir.
	s.hub.BroadcastToUser(msg.ReceiverID, ws.Event{Op: ws.OpMessageCreate, Data: msg})
	s.hub.BroadcastToUser(senderID, ws.Event{Op: ws.OpMessageCreate, Data: msg})

	// At-most-once bildirim: sadece başarılı kayıttan sonra, tek deneme.
	if err := s.notifier.Notify(ctx, notify.Notification{
		UserID: msg.ReceiverID,
		Title:  sender.Name,
		Body:   msg.Text,
	}); err != nil {
		log.Printf("[message] notification delivery failed: message=%s receiver=%s: %v",
			msg.ID, msg.ReceiverID, err)
	}

	return msg, nil
}

func (s *messageService) GetThread(ctx context.Context, selfID, counterpartID string) ([]models.Message, error) {
	if counterpartID == "" || counterpartID == selfID {
		return nil, fmt.Errorf("%w: invalid counterpart", pkg.ErrBadRequest)
	}
	return s.msgs.ListConversation(ctx, selfID, counterpartID)
}
