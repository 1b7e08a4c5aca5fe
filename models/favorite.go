package models

import "time"

// FavoriteRelation, "favorites" tablosundaki tek bir satır.
// Primary key (owner_id, counterpart_id) çiftidir.
//
// Follow'larla aynı soft-toggle disiplini: satır bir kez oluşur,
// sonrası boolean flip'tir. Favorite tek yönlü ve owner'a özeldir —
// karşı taraf favorilendiğini görmez.
type FavoriteRelation struct {
	OwnerID       string    `json:"owner_id"`
	CounterpartID string    `json:"counterpart_id"`
	IsMyFav       bool      `json:"is_my_fav"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
