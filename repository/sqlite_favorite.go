package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// sqliteFavoriteRepo, FavoriteRepository'nin SQLite implementasyonu.
type sqliteFavoriteRepo struct {
	db *sql.DB
}

// NewSQLiteFavoriteRepo, constructor — interface döner.
func NewSQLiteFavoriteRepo(db *sql.DB) FavoriteRepository {
	return &sqliteFavoriteRepo{db: db}
}

// Get, (owner, counterpart) çiftinin satırını döner.
func (r *sqliteFavoriteRepo) Get(ctx context.Context, ownerID, counterpartID string) (*models.FavoriteRelation, error) {
	query := `SELECT owner_id, counterpart_id, is_my_fav, created_at, updated_at
	          FROM favorites WHERE owner_id = ? AND counterpart_id = ?`

	var f models.FavoriteRelation
	err := r.db.QueryRowContext(ctx, query, ownerID, counterpartID).Scan(
		&f.OwnerID, &f.CounterpartID, &f.IsMyFav, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: favorite %s -> %s", pkg.ErrNotFound, ownerID, counterpartID)
	}
	if err != nil {
		return nil, fmt.Errorf("favorite get: %w", err)
	}
	return &f, nil
}

// Create, yeni bir favorite satırı oluşturur.
func (r *sqliteFavoriteRepo) Create(ctx context.Context, rel *models.FavoriteRelation) error {
	query := `INSERT INTO favorites (owner_id, counterpart_id, is_my_fav, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rel.OwnerID, rel.CounterpartID, rel.IsMyFav, rel.CreatedAt, rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("favorite create: %w", err)
	}
	return nil
}

// SetFav, mevcut satırın is_my_fav flag'ini günceller.
func (r *sqliteFavoriteRepo) SetFav(ctx context.Context, ownerID, counterpartID string, isMyFav bool) error {
	query := `UPDATE favorites SET is_my_fav = ?, updated_at = ?
	          WHERE owner_id = ? AND counterpart_id = ?`

	result, err := r.db.ExecContext(ctx, query, isMyFav, time.Now().UTC(), ownerID, counterpartID)
	if err != nil {
		return fmt.Errorf("favorite set fav: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("favorite set fav rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: favorite %s -> %s", pkg.ErrNotFound, ownerID, counterpartID)
	}

	return nil
}

// ListForOwner, owner'ın tüm favorite satırlarını döner.
func (r *sqliteFavoriteRepo) ListForOwner(ctx context.Context, ownerID string) ([]models.FavoriteRelation, error) {
	query := `SELECT owner_id, counterpart_id, is_my_fav, created_at, updated_at
	          FROM favorites WHERE owner_id = ?`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("favorite list for owner: %w", err)
	}
	defer rows.Close()

	relations := []models.FavoriteRelation{}
	for rows.Next() {
		var f models.FavoriteRelation
		if err := rows.Scan(&f.OwnerID, &f.CounterpartID, &f.IsMyFav, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("favorite list scan: %w", err)
		}
		relations = append(relations, f)
	}

	return relations, rows.Err()
}
