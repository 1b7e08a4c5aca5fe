// FavoriteHandler: konuşma favorileme endpoint'i.
//
// Route (main.go'da bağlanır):
//
//	POST /api/favorites/{counterpartId} → Toggle
package handlers

import (
	"net/http"

	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// FavoriteHandler, favori endpoint'ini yöneten struct.
type FavoriteHandler struct {
	favoriteService services.FavoriteService
}

// NewFavoriteHandler, constructor.
func NewFavoriteHandler(favoriteService services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// Toggle godoc
// POST /api/favorites/{counterpartId}
// Counterpart'ın favori durumunu tersine çevirir.
// Response: { "is_favorite": true }
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	isFav, err := h.favoriteService.ToggleFavorite(r.Context(), selfID, r.PathValue("counterpartId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]bool{"is_favorite": isFav})
}
