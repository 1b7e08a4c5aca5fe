// Package database — Demo seed.
//
// Kullanıcı kayıtları bu servis tarafından yazılmaz (profiller upstream'de
// yönetilir), bu yüzden sıfırdan açılan bir local DB'de hiç user yoktur ve
// hiçbir endpoint anlamlı veri dönemez. SeedDemoUsers, development için
// birkaç tanıdık profil ekler.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// demoUsers, local development'ta kullanılan sabit profiller.
// INSERT OR IGNORE sayesinde seed idempotent'tir — mevcut kayıtlar
// (upstream'den gelmiş gerçek profiller dahil) asla ezilmez.
var demoUsers = []struct {
	ID   string
	Name string
}{
	{"demo-ayse", "Ayşe"},
	{"demo-burak", "Burak"},
	{"demo-cem", "Cem"},
	{"demo-deniz", "Deniz"},
}

// SeedDemoUsers, demo profilleri tek transaction içinde ekler.
//
// WithTx burada all-or-nothing garanti verir: seed yarıda kesilirse
// (ör. Ctrl+C) kısmi bir demo kümesi kalmaz — bir sonraki açılışta
// temiz şekilde tekrar denenir.
func (db *DB) SeedDemoUsers(ctx context.Context) error {
	err := WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		for _, u := range demoUsers {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO users (id, name) VALUES (?, ?)`,
				u.ID, u.Name,
			); err != nil {
				return fmt.Errorf("seed user %s: %w", u.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("demo seed failed: %w", err)
	}

	log.Printf("[database] demo seed ensured (%d users)", len(demoUsers))
	return nil
}
