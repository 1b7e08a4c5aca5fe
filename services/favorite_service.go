package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/store"
)

// FavoriteService, konuşma favorileme iş mantığı interface'i.
//
// Favori de takip gibi soft-toggle'dır: satır silinmez, IsMyFav flag'i
// açılıp kapanır. Favori tek yönlüdür — benim seni favorilemem sende
// hiçbir şey değiştirmez.
type FavoriteService interface {
	// ToggleFavorite, counterpart'ın favori durumunu tersine çevirir ve
	// yeni durumu döner. Satır yoksa oluşturup true yapar.
	ToggleFavorite(ctx context.Context, selfID, counterpartID string) (bool, error)
}

type favoriteService struct {
	favorites store.FavoriteStore
	sessions  *SessionManager
}

func NewFavoriteService(favorites store.FavoriteStore, sessions *SessionManager) FavoriteService {
	return &favoriteService{
		favorites: favorites,
		sessions:  sessions,
	}
}

func (s *favoriteService) ToggleFavorite(ctx context.Context, selfID, counterpartID string) (bool, error) {
	if counterpartID == "" || counterpartID == selfID {
		return false, fmt.Errorf("%w: invalid counterpart", pkg.ErrBadRequest)
	}

	existing, err := s.favorites.GetFavorite(ctx, selfID, counterpartID)
	var newState bool
	switch {
	case errors.Is(err, pkg.ErrNotFound):
		now := time.Now().UTC()
		newState = true
		if err := s.favorites.CreateFavorite(ctx, &models.FavoriteRelation{
			OwnerID:       selfID,
			CounterpartID: counterpartID,
			IsMyFav:       true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	default:
		newState = !existing.IsMyFav
		if err := s.favorites.SetFavorite(ctx, selfID, counterpartID, newState); err != nil {
			return false, err
		}
	}

	// Store ack'ledi — listenin bir sonraki favorite fold'unu beklememesi
	// için optimistic patch.
	s.sessions.Get(selfID).ApplyFavoritePatch(counterpartID, newState)
	return newState, nil
}
