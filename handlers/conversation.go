// ConversationHandler: konuşma listesi ve okundu işaretleme endpoint'leri.
//
// Route'lar (main.go'da bağlanır):
//
//	GET  /api/conversations                       → List
//	POST /api/conversations/{counterpartId}/read  → MarkRead
package handlers

import (
	"net/http"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// ConversationHandler, konuşma endpoint'lerini yöneten struct.
type ConversationHandler struct {
	conversationService services.ConversationService
	readStateService    services.ReadStateService
}

// NewConversationHandler, constructor.
func NewConversationHandler(
	conversationService services.ConversationService,
	readStateService services.ReadStateService,
) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		readStateService:    readStateService,
	}
}

// List godoc
// GET /api/conversations?search=&favorites=
// Viewer'ın konuşma listesini döner: en yeni mesaj en üstte, okunmamış
// sayıları ve toplam rozet dahil.
//
// Query parametreleri:
//   - search: case-insensitive isim araması
//   - favorites: "true" ise sadece favorilenen konuşmalar
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	opts := models.ListOptions{
		Search:        r.URL.Query().Get("search"),
		FavoritesOnly: r.URL.Query().Get("favorites") == "true",
	}

	list, err := h.conversationService.GetConversationList(r.Context(), selfID, opts)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, list)
}

// MarkRead godoc
// POST /api/conversations/{counterpartId}/read
// Counterpart'tan gelen tüm okunmamış mesajları okundu yapar.
// Idempotent: okunmamış yoksa yine 204 döner.
func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	counterpartID := r.PathValue("counterpartId")

	if err := h.readStateService.MarkConversationRead(r.Context(), selfID, counterpartID); err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
