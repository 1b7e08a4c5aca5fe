package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/store"
	"github.com/akinalp/sohbet/ws"
)

// SocialService, takip grafiği iş mantığı interface'i.
//
// Takip ilişkisi soft-toggle'dır: satır bir kez oluşturulduktan sonra
// asla silinmez, Following flag'i açılıp kapanır. Üç durum vardır:
// hiç ilişki yok (satır yok), aktif (Following=true), pasif
// (Following=false). Unfollow hiç var olmamış ilişkide hatadır;
// zaten pasif ilişkide idempotent no-op'tur.
type SocialService interface {
	Follow(ctx context.Context, selfID, targetID string) error
	Unfollow(ctx context.Context, selfID, targetID string) error
	ListFollowed(ctx context.Context, selfID string) ([]models.FollowUser, error)
	ListFollowers(ctx context.Context, selfID string) ([]models.FollowUser, error)
	ListSuggestions(ctx context.Context, selfID string) ([]models.FollowUser, error)
}

type socialService struct {
	social   store.SocialStore
	profiles store.ProfileStore
	hub      ws.EventPublisher
}

func NewSocialService(social store.SocialStore, profiles store.ProfileStore, hub ws.EventPublisher) SocialService {
	return &socialService{
		social:   social,
		profiles: profiles,
		hub:      hub,
	}
}

func (s *socialService) Follow(ctx context.Context, selfID, targetID string) error {
	if targetID == "" || targetID == selfID {
		return fmt.Errorf("%w: invalid follow target", pkg.ErrBadRequest)
	}

	// Hedef gerçek bir kullanıcı mı?
	if _, err := s.profiles.GetUser(ctx, targetID); err != nil {
		return err
	}

	_, err := s.social.GetFollow(ctx, selfID, targetID)
	switch {
	case errors.Is(err, pkg.ErrNotFound):
		// İlk takip — satır oluştur.
		now := time.Now().UTC()
		if err := s.social.CreateFollow(ctx, &models.FollowRelation{
			FollowerID: selfID,
			FollowedID: targetID,
			Following:  true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		// Satır var — aktif olsa bile toggle idempotent'tir.
		if err := s.social.SetFollowing(ctx, selfID, targetID, true); err != nil {
			return err
		}
	}

	s.hub.BroadcastToUser(targetID, ws.Event{
		Op:   ws.OpFollowUpdate,
		Data: ws.FollowUpdateData{FollowerID: selfID, Following: true},
	})
	return nil
}

func (s *socialService) Unfollow(ctx context.Context, selfID, targetID string) error {
	if targetID == "" || targetID == selfID {
		return fmt.Errorf("%w: invalid follow target", pkg.ErrBadRequest)
	}

	// Hiç var olmamış ilişkiyi kapatmak hatadır — pasifleştirme değil.
	if _, err := s.social.GetFollow(ctx, selfID, targetID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: no follow relation with user %s", pkg.ErrNotFound, targetID)
		}
		return err
	}

	if err := s.social.SetFollowing(ctx, selfID, targetID, false); err != nil {
		return err
	}

	s.hub.BroadcastToUser(targetID, ws.Event{
		Op:   ws.OpFollowUpdate,
		Data: ws.FollowUpdateData{FollowerID: selfID, Following: false},
	})
	return nil
}

func (s *socialService) ListFollowed(ctx context.Context, selfID string) ([]models.FollowUser, error) {
	state, err := s.foldRelations(ctx, selfID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, setToIDs(state.Followed), state.Followers)
}

func (s *socialService) ListFollowers(ctx context.Context, selfID string) ([]models.FollowUser, error) {
	state, err := s.foldRelations(ctx, selfID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, setToIDs(state.Followers), state.Followers)
}

// ListSuggestions, henüz aktif takip edilmeyen diğer kullanıcıları döner.
// Pasif (eskiden takip edilip bırakılmış) kullanıcılar önerilere geri düşer.
func (s *socialService) ListSuggestions(ctx context.Context, selfID string) ([]models.FollowUser, error) {
	state, err := s.foldRelations(ctx, selfID)
	if err != nil {
		return nil, err
	}

	others, err := s.profiles.ListOtherUsers(ctx, selfID)
	if err != nil {
		return nil, err
	}

	out := make([]models.FollowUser, 0, len(others))
	for _, u := range others {
		if state.Followed[u.ID] {
			continue
		}
		out = append(out, models.FollowUser{
			UserID:     u.ID,
			Name:       u.Name,
			AvatarURL:  u.AvatarURL,
			FollowsYou: state.Followers[u.ID],
		})
	}
	return out, nil
}

// foldRelations, kullanıcının tüm follow satırlarını çekip saf fold'dan geçirir.
func (s *socialService) foldRelations(ctx context.Context, selfID string) (SocialState, error) {
	rels, err := s.social.ListFollowsFor(ctx, selfID)
	if err != nil {
		return SocialState{}, err
	}
	return FoldFollows(rels, selfID), nil
}

// resolveUsers, id kümesini profillerle birleştirip isme göre sıralı döner.
// Profili bulunamayan id'ler sessizce atlanır.
func (s *socialService) resolveUsers(ctx context.Context, ids []string, followers map[string]bool) ([]models.FollowUser, error) {
	users, err := s.profiles.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.FollowUser, 0, len(users))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		out = append(out, models.FollowUser{
			UserID:     u.ID,
			Name:       u.Name,
			AvatarURL:  u.AvatarURL,
			FollowsYou: followers[id],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func setToIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
