// SocialHandler: takip grafiği endpoint'leri.
//
// Route'lar (main.go'da bağlanır):
//
//	POST   /api/follows/{targetId}    → Follow
//	DELETE /api/follows/{targetId}    → Unfollow
//	GET    /api/follows/followed      → ListFollowed
//	GET    /api/follows/followers     → ListFollowers
//	GET    /api/follows/suggestions   → ListSuggestions
package handlers

import (
	"net/http"

	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// SocialHandler, takip endpoint'lerini yöneten struct.
type SocialHandler struct {
	socialService services.SocialService
}

// NewSocialHandler, constructor.
func NewSocialHandler(socialService services.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// Follow godoc
// POST /api/follows/{targetId}
// Hedef kullanıcıyı takibe alır. Zaten takip ediliyorsa no-op — yine 204.
func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	if err := h.socialService.Follow(r.Context(), selfID, r.PathValue("targetId")); err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow godoc
// DELETE /api/follows/{targetId}
// Takibi pasifleştirir (satır silinmez). Hiç takip edilmemiş bir
// kullanıcı için 404 döner.
func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	if err := h.socialService.Unfollow(r.Context(), selfID, r.PathValue("targetId")); err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFollowed godoc
// GET /api/follows/followed
// Viewer'ın aktif olarak takip ettiği kullanıcıları döner (isme göre sıralı).
func (h *SocialHandler) ListFollowed(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	users, err := h.socialService.ListFollowed(r.Context(), selfID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// ListFollowers godoc
// GET /api/follows/followers
// Viewer'ı aktif olarak takip eden kullanıcıları döner.
func (h *SocialHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	users, err := h.socialService.ListFollowers(r.Context(), selfID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// ListSuggestions godoc
// GET /api/follows/suggestions
// Henüz takip edilmeyen kullanıcıları döner (FollowsYou flag'i ile).
func (h *SocialHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	selfID := viewerID(r)
	if selfID == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing viewer identity")
		return
	}

	users, err := h.socialService.ListSuggestions(r.Context(), selfID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}
