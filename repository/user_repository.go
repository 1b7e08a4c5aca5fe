// Package repository — UserRepository interface.
//
// Kullanıcı kayıtları bu subsystem için read-only'dir: authentication ve
// profil yönetimi upstream'dedir, biz sadece lookup yaparız.
package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// UserRepository, kullanıcı profil lookup'ları için interface.
type UserRepository interface {
	// GetByID, tek bir kullanıcıyı döner. Bulunamazsa pkg.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByIDs, verilen id kümesinin bulunan alt kümesini map olarak döner.
	// Eksik id hata DEĞİLDİR — silinen kullanıcının conversation'ı
	// listeden düşer, fold crash etmez.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)

	// ListOthers, self hariç tüm kullanıcıları döner.
	// Follow suggestion türetimi için kullanılır.
	ListOthers(ctx context.Context, selfID string) ([]models.User, error)
}
