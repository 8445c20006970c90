package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.users.update(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) {
				return nil, fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
			}
		}
		return append(users, *user), nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.db.users.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.db.users.find(ctx, func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	return r.db.users.all(ctx)
}
