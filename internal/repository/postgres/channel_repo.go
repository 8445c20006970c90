package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

var (
	channelColumns = []string{"c.id", "c.name", "c.is_private", "c.kind", "c.owner_id", "c.created_at"}
	memberColumns  = []string{"channel_id", "user_id", "role", "joined_at"}
)

var _ repository.ChannelRepository = (*ChannelRepo)(nil)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

func (r *ChannelRepo) Create(ctx context.Context, ch *domain.Channel) error {
	query, args, err := psql.Insert("channels").
		Columns("id", "name", "is_private", "kind", "owner_id", "created_at").
		Values(ch.ID, ch.Name, ch.IsPrivate, ch.Kind, ch.OwnerID, ch.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return mapError(err)
}

func (r *ChannelRepo) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	return r.getOne(ctx, sq.Eq{"c.id": id})
}

func (r *ChannelRepo) GetByName(ctx context.Context, name string) (*domain.Channel, error) {
	return r.getOne(ctx, sq.Eq{"c.name": name})
}

func (r *ChannelRepo) List(ctx context.Context) ([]domain.Channel, error) {
	return r.list(ctx, psql.Select(channelColumns...).From("channels c").OrderBy("c.created_at"))
}

func (r *ChannelRepo) ListByUser(ctx context.Context, userID string) ([]domain.Channel, error) {
	return r.list(ctx, psql.Select(channelColumns...).
		From("channels c").
		Join("channel_members m ON m.channel_id = c.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("c.created_at"))
}

func (r *ChannelRepo) Update(ctx context.Context, ch *domain.Channel) error {
	query, args, err := psql.Update("channels").
		Set("name", ch.Name).
		Set("is_private", ch.IsPrivate).
		Where(sq.Eq{"id": ch.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return mapError(err)
}

// Delete relies on ON DELETE CASCADE for channel_members.
func (r *ChannelRepo) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("channels").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *ChannelRepo) AddMember(ctx context.Context, m *domain.ChannelMember) error {
	query, args, err := psql.Insert("channel_members").
		Columns(memberColumns...).
		Values(m.ChannelID, m.UserID, m.Role, m.JoinedAt).
		Suffix("ON CONFLICT (channel_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *ChannelRepo) GetMember(ctx context.Context, channelID, userID string) (*domain.ChannelMember, error) {
	query, args, err := psql.Select(memberColumns...).
		From("channel_members").
		Where(sq.Eq{"channel_id": channelID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %w", err)
	}

	var m domain.ChannelMember
	err = r.pool.QueryRow(ctx, query, args...).Scan(&m.ChannelID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ChannelRepo) ListMembers(ctx context.Context, channelID string) ([]domain.ChannelMember, error) {
	query, args, err := psql.Select(memberColumns...).
		From("channel_members").
		Where(sq.Eq{"channel_id": channelID}).
		OrderBy("joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.ChannelMember
	for rows.Next() {
		var m domain.ChannelMember
		if err := rows.Scan(&m.ChannelID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *ChannelRepo) getOne(ctx context.Context, where sq.Eq) (*domain.Channel, error) {
	query, args, err := psql.Select(channelColumns...).From("channels c").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %w", err)
	}

	var ch domain.Channel
	err = r.pool.QueryRow(ctx, query, args...).Scan(&ch.ID, &ch.Name, &ch.IsPrivate, &ch.Kind, &ch.OwnerID, &ch.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *ChannelRepo) list(ctx context.Context, b sq.SelectBuilder) ([]domain.Channel, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.IsPrivate, &ch.Kind, &ch.OwnerID, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}
