// Package repository — FavoriteRepository interface.
//
// Follow'larla aynı soft-toggle disiplini, ama owner'a özel tek yönlü kayıt.
package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// FavoriteRepository, favorite ilişki satırları için interface.
type FavoriteRepository interface {
	// Get, (owner, counterpart) çiftinin satırını döner.
	// Satır hiç oluşmamışsa pkg.ErrNotFound.
	Get(ctx context.Context, ownerID, counterpartID string) (*models.FavoriteRelation, error)

	// Create, yeni bir favorite satırı oluşturur (is_my_fav=true ile).
	Create(ctx context.Context, rel *models.FavoriteRelation) error

	// SetFav, mevcut satırın is_my_fav flag'ini günceller.
	// Satır yoksa pkg.ErrNotFound.
	SetFav(ctx context.Context, ownerID, counterpartID string, isMyFav bool) error

	// ListForOwner, owner'ın tüm favorite satırlarını döner
	// (is_my_fav=false olanlar dahil — fold filtreler).
	ListForOwner(ctx context.Context, ownerID string) ([]models.FavoriteRelation, error)
}
