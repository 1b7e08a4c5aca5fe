package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// sqliteUserRepo, UserRepository'nin SQLite implementasyonu.
type sqliteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo, constructor — interface döner.
func NewSQLiteUserRepo(db *sql.DB) UserRepository {
	return &sqliteUserRepo{db: db}
}

// GetByID, tek bir kullanıcıyı döner.
func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, avatar_url, created_at FROM users WHERE id = ?`

	var u models.User
	var avatarURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &avatarURL, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", pkg.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("user get by id: %w", err)
	}

	if avatarURL.Valid {
		u.AvatarURL = &avatarURL.String
	}
	return &u, nil
}

// GetByIDs, id kümesinin bulunan alt kümesini map olarak döner.
//
// IN clause dinamik kurulur — SQLite'ta array parametresi yoktur,
// placeholder sayısı id sayısına göre üretilir.
func (r *sqliteUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(
		`SELECT id, name, avatar_url, created_at FROM users WHERE id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("user get by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		var avatarURL sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &avatarURL, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("user get by ids scan: %w", err)
		}
		if avatarURL.Valid {
			u.AvatarURL = &avatarURL.String
		}
		users[u.ID] = u
	}

	return users, rows.Err()
}

// ListOthers, self hariç tüm kullanıcıları isim sırasıyla döner.
func (r *sqliteUserRepo) ListOthers(ctx context.Context, selfID string) ([]models.User, error) {
	query := `SELECT id, name, avatar_url, created_at FROM users
	          WHERE id != ? ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, selfID)
	if err != nil {
		return nil, fmt.Errorf("user list others: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var avatarURL sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &avatarURL, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("user list others scan: %w", err)
		}
		if avatarURL.Valid {
			u.AvatarURL = &avatarURL.String
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
