package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx, fn'i tek transaction içinde çalıştırır: fn nil dönerse commit,
// hata dönerse rollback, panic atarsa rollback edilip panic yeniden
// fırlatılır. Rollback'siz kalan açık bir transaction SQLite'ta yazma
// kilidini tutar; recover bu yüzden şarttır.
//
// Engine'in dışa verdiği garanti per-document atomicity olduğundan WithTx
// cross-collection akışlarda kullanılmaz; tek collection'a çoklu-statement
// yazan seed/backfill gibi işler içindir.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}
