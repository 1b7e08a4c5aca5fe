// Package repository — FollowRepository interface.
//
// Follow ilişkisi yönlüdür: (follower_id, followed_id) primary key.
// Satırlar asla silinmez — unfollow following=false yapar (soft toggle).
// Friendship tarzı çift yönlü UNION sorgusuna gerek yoktur; follower ve
// followed tarafları ayrı sorgulardır.
package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// FollowRepository, follow ilişki satırları için interface.
type FollowRepository interface {
	// GetByPair, (follower, followed) yönlü çiftinin satırını döner.
	// Satır hiç oluşmamışsa pkg.ErrNotFound — RelationNone durumu.
	GetByPair(ctx context.Context, followerID, followedID string) (*models.FollowRelation, error)

	// Create, yeni bir ilişki satırı oluşturur (following=true ile).
	Create(ctx context.Context, rel *models.FollowRelation) error

	// SetFollowing, mevcut satırın following flag'ini günceller.
	// Satır yoksa pkg.ErrNotFound.
	SetFollowing(ctx context.Context, followerID, followedID string, following bool) error

	// ListForUser, kullanıcının iki yönde de taraf olduğu TÜM satırları
	// döner (inactive'ler dahil). Social graph snapshot'ının kaynağıdır —
	// Followed/Follower kümeleri fold'da türetilir.
	ListForUser(ctx context.Context, userID string) ([]models.FollowRelation, error)
}
