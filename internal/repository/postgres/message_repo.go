package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

var messageColumns = []string{"id", "channel_id", "author_id", "body", "created_at", "edited_at"}

var _ repository.MessageRepository = (*MessageRepo)(nil)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query, args, err := psql.Insert("messages").
		Columns(messageColumns...).
		Values(msg.ID, msg.ChannelID, msg.AuthorID, msg.Body, msg.CreatedAt, msg.EditedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query, args, err := psql.Select(messageColumns...).From("messages").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %w", err)
	}

	var msg domain.Message
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Body, &msg.CreatedAt, &msg.EditedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepo) ListByChannel(ctx context.Context, channelID string, after *time.Time, limit int) ([]domain.Message, error) {
	b := psql.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"channel_id": channelID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if after != nil {
		b = b.Where(sq.Gt{"created_at": *after})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Body, &msg.CreatedAt, &msg.EditedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	// newest first from the query; callers want chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, rows.Err()
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	query, args, err := psql.Update("messages").
		Set("body", msg.Body).
		Set("edited_at", msg.EditedAt).
		Where(sq.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("messages").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *MessageRepo) DeleteByChannel(ctx context.Context, channelID string) error {
	query, args, err := psql.Delete("messages").Where(sq.Eq{"channel_id": channelID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
