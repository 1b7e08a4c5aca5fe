// Package repository — MessageRepository SQLite implementasyonu.
//
// reply_to iki denormalize kolonda saklanır (reply_to_text, reply_to_author).
// İkisi de NULL ise mesajın ReplyTo'su nil'dir.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akinalp/sohbet/models"
)

// sqliteMessageRepo, MessageRepository'nin SQLite implementasyonu.
// Private struct — dışarıdan sadece interface üzerinden erişilir.
type sqliteMessageRepo struct {
	db *sql.DB
}

// NewSQLiteMessageRepo, constructor — interface döner.
func NewSQLiteMessageRepo(db *sql.DB) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

// Create, yeni bir mesaj kaydı ekler.
func (r *sqliteMessageRepo) Create(ctx context.Context, m *models.Message) error {
	query := `INSERT INTO messages (id, sender_id, receiver_id, text, created_at, is_read, reply_to_text, reply_to_author)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var replyText, replyAuthor sql.NullString
	if m.ReplyTo != nil {
		replyText = sql.NullString{String: m.ReplyTo.Text, Valid: true}
		replyAuthor = sql.NullString{String: m.ReplyTo.AuthorName, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.CreatedAt, m.IsRead, replyText, replyAuthor)
	if err != nil {
		return fmt.Errorf("message create: %w", err)
	}
	return nil
}

// ListForUser, kullanıcının taraf olduğu tüm mesajları döner.
func (r *sqliteMessageRepo) ListForUser(ctx context.Context, userID string) ([]models.Message, error) {
	query := `SELECT id, sender_id, receiver_id, text, created_at, is_read, reply_to_text, reply_to_author
	          FROM messages
	          WHERE sender_id = ? OR receiver_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("message list for user: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListBetween, iki kullanıcı arasındaki mesajları kronolojik sırayla döner.
// Eşit timestamp'lerde id ile ikincil sıralama — deterministik çıktı.
func (r *sqliteMessageRepo) ListBetween(ctx context.Context, selfID, counterpartID string) ([]models.Message, error) {
	query := `SELECT id, sender_id, receiver_id, text, created_at, is_read, reply_to_text, reply_to_author
	          FROM messages
	          WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	          ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, selfID, counterpartID, counterpartID, selfID)
	if err != nil {
		return nil, fmt.Errorf("message list between: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MarkConversationRead, counterpart → self yönündeki okunmamış mesajları okundu yapar.
//
// Tek UPDATE statement — SQLite'ta statement başına atomiktir, ama store
// genelinde transactional garanti yoktur: bu yazma ile bir sonraki snapshot
// arasında başka yazmalar araya girebilir. Engine bu yüzden sonucu lokal
// state'e işlemez, bir sonraki fold'dan okur.
func (r *sqliteMessageRepo) MarkConversationRead(ctx context.Context, selfID, counterpartID string) (int64, error) {
	query := `UPDATE messages SET is_read = 1
	          WHERE sender_id = ? AND receiver_id = ? AND is_read = 0`

	result, err := r.db.ExecContext(ctx, query, counterpartID, selfID)
	if err != nil {
		return 0, fmt.Errorf("message mark conversation read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("message mark conversation read rows affected: %w", err)
	}
	return affected, nil
}

// scanMessages, ortak row scan mantığı. ListForUser ve ListBetween aynı
// column set'ini döner — DRY prensibi.
func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		var replyText, replyAuthor sql.NullString

		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.CreatedAt, &m.IsRead,
			&replyText, &replyAuthor,
		); err != nil {
			return nil, fmt.Errorf("message scan: %w", err)
		}

		if replyText.Valid {
			m.ReplyTo = &models.ReplyRef{
				Text:       replyText.String,
				AuthorName: replyAuthor.String,
			}
		}

		messages = append(messages, m)
	}

	return messages, rows.Err()
}
