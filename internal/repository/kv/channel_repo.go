package kv

import (
	"context"
	"fmt"
	"sort"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

var _ repository.ChannelRepository = (*ChannelRepo)(nil)

type ChannelRepo struct {
	db *DB
}

func NewChannelRepo(db *DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

func (r *ChannelRepo) Create(ctx context.Context, ch *domain.Channel) error {
	return r.db.channels.update(ctx, func(channels []domain.Channel) ([]domain.Channel, error) {
		for _, c := range channels {
			if c.ID == ch.ID || c.Name == ch.Name {
				return nil, fmt.Errorf("channel %s: %w", ch.Name, repository.ErrDuplicate)
			}
		}
		return append(channels, *ch), nil
	})
}

func (r *ChannelRepo) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	return r.db.channels.find(ctx, func(c domain.Channel) bool { return c.ID == id })
}

func (r *ChannelRepo) GetByName(ctx context.Context, name string) (*domain.Channel, error) {
	return r.db.channels.find(ctx, func(c domain.Channel) bool { return c.Name == name })
}

func (r *ChannelRepo) List(ctx context.Context) ([]domain.Channel, error) {
	channels, err := r.db.channels.all(ctx)
	if err != nil {
		return nil, err
	}
	sortChannels(channels)
	return channels, nil
}

func (r *ChannelRepo) ListByUser(ctx context.Context, userID string) ([]domain.Channel, error) {
	members, err := r.db.memberships.all(ctx)
	if err != nil {
		return nil, err
	}
	joined := make(map[string]struct{})
	for _, m := range members {
		if m.UserID == userID {
			joined[m.ChannelID] = struct{}{}
		}
	}

	channels, err := r.db.channels.all(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Channel
	for _, c := range channels {
		if _, ok := joined[c.ID]; ok {
			out = append(out, c)
		}
	}
	sortChannels(out)
	return out, nil
}

func (r *ChannelRepo) Update(ctx context.Context, ch *domain.Channel) error {
	return r.db.channels.update(ctx, func(channels []domain.Channel) ([]domain.Channel, error) {
		idx := -1
		for i, c := range channels {
			switch {
			case c.ID == ch.ID:
				idx = i
			case c.Name == ch.Name:
				return nil, fmt.Errorf("channel %s: %w", ch.Name, repository.ErrDuplicate)
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("channel %s not found", ch.ID)
		}
		channels[idx] = *ch
		return channels, nil
	})
}

func (r *ChannelRepo) Delete(ctx context.Context, id string) error {
	err := r.db.channels.update(ctx, func(channels []domain.Channel) ([]domain.Channel, error) {
		return removeWhere(channels, func(c domain.Channel) bool { return c.ID == id }), nil
	})
	if err != nil {
		return err
	}
	return r.db.memberships.update(ctx, func(members []domain.ChannelMember) ([]domain.ChannelMember, error) {
		return removeWhere(members, func(m domain.ChannelMember) bool { return m.ChannelID == id }), nil
	})
}

// AddMember is a no-op when the user already belongs to the channel.
func (r *ChannelRepo) AddMember(ctx context.Context, member *domain.ChannelMember) error {
	return r.db.memberships.update(ctx, func(members []domain.ChannelMember) ([]domain.ChannelMember, error) {
		for _, m := range members {
			if m.ChannelID == member.ChannelID && m.UserID == member.UserID {
				return members, nil
			}
		}
		return append(members, *member), nil
	})
}

func (r *ChannelRepo) GetMember(ctx context.Context, channelID, userID string) (*domain.ChannelMember, error) {
	return r.db.memberships.find(ctx, func(m domain.ChannelMember) bool {
		return m.ChannelID == channelID && m.UserID == userID
	})
}

func (r *ChannelRepo) ListMembers(ctx context.Context, channelID string) ([]domain.ChannelMember, error) {
	members, err := r.db.memberships.all(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.ChannelMember
	for _, m := range members {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func sortChannels(channels []domain.Channel) {
	sort.SliceStable(channels, func(i, j int) bool { return channels[i].CreatedAt.Before(channels[j].CreatedAt) })
}
