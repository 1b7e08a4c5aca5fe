package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// sqliteFollowRepo, FollowRepository'nin SQLite implementasyonu.
type sqliteFollowRepo struct {
	db *sql.DB
}

// NewSQLiteFollowRepo, constructor — interface döner.
func NewSQLiteFollowRepo(db *sql.DB) FollowRepository {
	return &sqliteFollowRepo{db: db}
}

// GetByPair, yönlü (follower, followed) çiftinin satırını döner.
func (r *sqliteFollowRepo) GetByPair(ctx context.Context, followerID, followedID string) (*models.FollowRelation, error) {
	query := `SELECT follower_id, followed_id, following, created_at, updated_at
	          FROM follows WHERE follower_id = ? AND followed_id = ?`

	var f models.FollowRelation
	err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(
		&f.FollowerID, &f.FollowedID, &f.Following, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: follow %s -> %s", pkg.ErrNotFound, followerID, followedID)
	}
	if err != nil {
		return nil, fmt.Errorf("follow get by pair: %w", err)
	}
	return &f, nil
}

// Create, yeni bir ilişki satırı oluşturur.
func (r *sqliteFollowRepo) Create(ctx context.Context, rel *models.FollowRelation) error {
	query := `INSERT INTO follows (follower_id, followed_id, following, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rel.FollowerID, rel.FollowedID, rel.Following, rel.CreatedAt, rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("follow create: %w", err)
	}
	return nil
}

// SetFollowing, mevcut satırın following flag'ini günceller.
//
// Concurrent follow çağrılarında last-write-wins kabul edilebilir —
// iki taraf da aynı değeri yazıyorsa sonuç zaten aynıdır, finansal veya
// sıralama riski yoktur.
func (r *sqliteFollowRepo) SetFollowing(ctx context.Context, followerID, followedID string, following bool) error {
	query := `UPDATE follows SET following = ?, updated_at = ?
	          WHERE follower_id = ? AND followed_id = ?`

	result, err := r.db.ExecContext(ctx, query, following, time.Now().UTC(), followerID, followedID)
	if err != nil {
		return fmt.Errorf("follow set following: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("follow set following rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: follow %s -> %s", pkg.ErrNotFound, followerID, followedID)
	}

	return nil
}

// ListForUser, kullanıcının taraf olduğu tüm ilişki satırlarını döner.
func (r *sqliteFollowRepo) ListForUser(ctx context.Context, userID string) ([]models.FollowRelation, error) {
	query := `SELECT follower_id, followed_id, following, created_at, updated_at
	          FROM follows WHERE follower_id = ? OR followed_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("follow list for user: %w", err)
	}
	defer rows.Close()

	relations := []models.FollowRelation{}
	for rows.Next() {
		var f models.FollowRelation
		if err := rows.Scan(&f.FollowerID, &f.FollowedID, &f.Following, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("follow list scan: %w", err)
		}
		relations = append(relations, f)
	}

	return relations, rows.Err()
}
