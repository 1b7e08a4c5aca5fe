// MessageHandler: mesaj gönderme ve thread okuma endpoint'leri.
//
// Route'lar (main.go'da bağlanır):
//
//	POST /api/messages                   → Send
//	GET  /api/messages/{counterpartId}   → Thread
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// MessageHandler, mesaj endpoint'lerini yöneten struct.
type MessageHandler struct {
	messageService   services.MessageService
	readStateService services.ReadStateService
}

// NewMessageHandler, constructor.
func NewMessageHandler(
	messageService services.MessageService,
	readStateService services.ReadStateService,
) *MessageHandler {
	return &MessageHandler{
		messageService:   messageService,
		readStateService: readStateService,
	}
}

// Send godoc
// POST /api/messages
// Body: { "receiver_id": "...", "text": "...", "reply_to": {...} }
// Mesajı kalıcılaştırır ve oluşan mesajı döner. Bildirim teslimi
// asenkron değildir ama başarısızlığı response'u etkilemez.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.messageService.SendMessage(r.Context(), selfID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}

// Thread godoc
// GET /api/messages/{counterpartId}
// İki kullanıcı arasındaki mesajları kronolojik döner ve thread'i
// görüntülemenin yan etkisi olarak okunmamışları okundu işaretler —
// konuşmayı açmak okumaktır.
func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	counterpartID := r.PathValue("counterpartId")

	msgs, err := h.messageService.GetThread(r.Context(), selfID, counterpartID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Görüntüleme yan etkisi: hata thread'i düşürmez, sadece loglanır.
	// Okunmamışlar bir sonraki görüntülemede yine işaretlenecektir.
	if err := h.readStateService.MarkConversationRead(r.Context(), selfID, counterpartID); err != nil {
		log.Printf("[message] mark-on-view failed: user=%s counterpart=%s: %v", selfID, counterpartID, err)
	}

	pkg.JSON(w, http.StatusOK, msgs)
}
