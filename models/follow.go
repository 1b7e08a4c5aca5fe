package models

import "time"

// RelationState, bir (follower, followed) çiftinin soft-toggle durumudur.
//
// Soft toggle nedir?
// Follow kaydı hiçbir zaman hard-delete edilmez. Unfollow, satırı silmek
// yerine following=false yapar. Böylece:
// 1. Re-follow idempotent olur (satır zaten var, sadece flag döner)
// 2. İlişki geçmişi korunur
// 3. "NoRelation" durumuna, satır bir kez oluştuktan sonra asla geri dönülmez
type RelationState string

const (
	RelationNone     RelationState = "none"      // Satır hiç oluşmamış
	RelationActive   RelationState = "active"    // following = true
	RelationInactive RelationState = "inactive"  // following = false (unfollow sonrası)
)

// FollowRelation, "follows" tablosundaki tek bir satır.
// Primary key (follower_id, followed_id) çiftidir — yönlü ilişki.
type FollowRelation struct {
	FollowerID string    `json:"follower_id"`
	FollowedID string    `json:"followed_id"`
	Following  bool      `json:"following"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// State, satırın RelationState karşılığını döner.
// nil receiver RelationNone demektir — "satır yok" durumu da state'tir.
func (f *FollowRelation) State() RelationState {
	if f == nil {
		return RelationNone
	}
	if f.Following {
		return RelationActive
	}
	return RelationInactive
}

// FollowUser, follow listelerinde dönen kullanıcı DTO'su.
// Karşı tarafın profil bilgisi + karşılıklılık flag'i.
type FollowUser struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	AvatarURL  *string `json:"avatar_url"`
	FollowsYou bool    `json:"follows_you"` // "Follow Back" butonu için
}
