package models

import "time"

// User, profil lookup'ının döndürdüğü kullanıcı kaydı.
// DB'deki "users" tablosunun Go karşılığı.
//
// Authentication bu subsystem'in dışındadır — user kayıtları upstream
// tarafından yazılır, biz sadece okuruz (conversation list'te isim/avatar
// çözmek ve follow suggestion üretmek için).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"` // Nullable — avatar üretimi presentation katmanının işi
	CreatedAt time.Time `json:"created_at"`
}
