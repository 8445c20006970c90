package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
	"github.com/vedran77/lax/pkg/validator"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("invalid user")
)

type UserService struct {
	userRepo repository.UserRepository
	channels *ChannelService
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, channels *ChannelService) *UserService {
	return &UserService{
		userRepo: userRepo,
		channels: channels,
		now:      time.Now,
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Create registers a user. Emails are compared case-insensitively and an
// existing user with the same email is returned as is. A new user joins
// the default channel, which is created on demand.
func (s *UserService) Create(ctx context.Context, email, displayName string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if errs := validator.ValidateUser(email, displayName); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUser, errs.First("email", "display_name"))
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.now()
	user := &domain.User{
		ID:          domain.NewID(),
		Email:       strings.ToLower(email),
		DisplayName: displayName,
		Role:        domain.UserRoleMember,
		CreatedAt:   now,
		LastActive:  now,
	}
	return s.register(ctx, user)
}

// DemoUsers are the sample accounts SeedDemo creates.
var DemoUsers = []domain.User{
	{Email: "admin@lax.hq", DisplayName: "System", Role: domain.UserRoleAdmin, JobTitle: "Bot", Status: "Monitoring uplink..."},
	{Email: "viper@topgun.nav", DisplayName: "Viper", Role: domain.UserRoleMember, JobTitle: "Instructor", Status: "In the tower."},
}

// SeedDemo creates the demo users that do not exist yet.
func (s *UserService) SeedDemo(ctx context.Context) error {
	for _, demo := range DemoUsers {
		existing, err := s.userRepo.GetByEmail(ctx, demo.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		user := demo
		user.ID = domain.NewID()
		user.CreatedAt = s.now()
		user.LastActive = user.CreatedAt
		if _, err := s.register(ctx, &user); err != nil {
			return fmt.Errorf("seeding %s: %w", demo.Email, err)
		}
	}
	return nil
}

// register stores a new user and joins them to the default channel.
func (s *UserService) register(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.userRepo.GetByEmail(ctx, user.Email)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	general, err := s.channels.EnsureDefaults(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.channels.Join(ctx, general.ID, user.ID); err != nil {
		return nil, fmt.Errorf("joining #%s: %w", general.Name, err)
	}

	return user, nil
}
