package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cyrilcaoyang/gopoe/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an initialized database handle. The schema is
// expected to exist already (database.InitDB runs the migrations).
func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	query := "INSERT INTO conversations (id, title, bot_name, chat_mode, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, conv.ID, conv.Title, conv.BotName, conv.ChatMode, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not insert conversation: %w", err)
	}
	return nil
}

func (r *sqliteRepository) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	query := "SELECT id, title, bot_name, chat_mode, created_at, updated_at FROM conversations WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, conversationID)

	var conv model.Conversation
	err := row.Scan(&conv.ID, &conv.Title, &conv.BotName, &conv.ChatMode, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *sqliteRepository) GetConversations(ctx context.Context, limit int) ([]*model.Conversation, error) {
	query := "SELECT id, title, bot_name, chat_mode, created_at, updated_at FROM conversations ORDER BY updated_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*model.Conversation
	for rows.Next() {
		var conv model.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.BotName, &conv.ChatMode, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, &conv)
	}
	return convs, rows.Err()
}

func (r *sqliteRepository) UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error {
	query := "UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, newTitle, time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *sqliteRepository) UpdateConversationBot(ctx context.Context, conversationID, botName string) error {
	query := "UPDATE conversations SET bot_name = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, botName, time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// DeleteConversation removes the conversation and all of its messages in one
// transaction. Deleting an id that does not exist returns ErrNotFound; it is
// never a silent no-op.
func (r *sqliteRepository) DeleteConversation(ctx context.Context, conversationID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("could not delete messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *sqliteRepository) AppendMessage(ctx context.Context, msg *model.Message) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Bumping updated_at first doubles as the existence check for the parent.
	res, err := tx.ExecContext(ctx, "UPDATE conversations SET updated_at = ? WHERE id = ?", msg.Timestamp, msg.ConversationID)
	if err != nil {
		return 0, fmt.Errorf("could not update conversation timestamp: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return 0, err
	}

	contentType := msg.ContentType
	if contentType == "" {
		contentType = "text"
	}

	insert := "INSERT INTO messages (conversation_id, role, content, content_type, timestamp) VALUES (?, ?, ?, ?, ?)"
	res, err = tx.ExecContext(ctx, insert, msg.ConversationID, string(msg.Role), msg.Content, contentType, msg.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("could not insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not read message id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *sqliteRepository) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	// A missing conversation is reported as not-found rather than an empty
	// history, so deleted conversations cannot be mistaken for empty ones.
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM conversations WHERE id = ?", conversationID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	query := `
		SELECT id, conversation_id, role, content, content_type, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var role string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.ContentType, &msg.Timestamp); err != nil {
			return nil, err
		}
		msg.Role = model.Role(role)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteRepository) CountUserMessages(ctx context.Context, conversationID string) (int, error) {
	query := "SELECT COUNT(*) FROM messages WHERE conversation_id = ? AND role = ?"
	var count int
	if err := r.db.QueryRowContext(ctx, query, conversationID, string(model.RoleUser)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
