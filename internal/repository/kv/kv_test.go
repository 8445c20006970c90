package kv

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestPebbleStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenPebble(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = s.Get(ctx, UsersKey)
	assert.ErrorIs(t, err, ErrNotFound)

	db := NewDB(s)
	users := NewUserRepo(db)
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Email: "ann@example.com", DisplayName: "Ann"}))
	require.NoError(t, db.Close())

	s, err = OpenPebble(dir, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	got, err := NewUserRepo(NewDB(s)).GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMessageRepo(NewDB(NewMemoryStore()))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, &domain.Message{
				ID:        fmt.Sprintf("m%d", i),
				ChannelID: "c1",
				Body:      "hi",
				CreatedAt: time.Unix(int64(i), 0),
			}))
		}(i)
	}
	wg.Wait()

	msgs, err := repo.ListByChannel(ctx, "c1", nil, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, n)
}

func TestMessageRepo_ListByChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMessageRepo(NewDB(NewMemoryStore()))

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// inserted out of order on purpose
	for _, i := range []int{3, 1, 4, 0, 2} {
		require.NoError(t, repo.Create(ctx, &domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			ChannelID: "c1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "other", ChannelID: "c2", CreatedAt: base}))

	all, err := repo.ListByChannel(ctx, "c1", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"m0", "m1", "m2", "m3", "m4"}, ids(all))

	latest, err := repo.ListByChannel(ctx, "c1", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m4"}, ids(latest))

	after := base.Add(2 * time.Minute)
	newer, err := repo.ListByChannel(ctx, "c1", &after, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m4"}, ids(newer))

	require.NoError(t, repo.DeleteByChannel(ctx, "c1"))
	all, err = repo.ListByChannel(ctx, "c1", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, all)

	other, err := repo.GetByID(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, other)
}

func TestChannelRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewChannelRepo(NewDB(NewMemoryStore()))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	general := &domain.Channel{ID: "c1", Name: "general", Kind: domain.ChannelKindGroup, CreatedAt: base}
	random := &domain.Channel{ID: "c2", Name: "random", Kind: domain.ChannelKindGroup, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, random))
	require.NoError(t, repo.Create(ctx, general))
	assert.ErrorIs(t, repo.Create(ctx, &domain.Channel{ID: "c3", Name: "general"}), repository.ErrDuplicate)

	require.NoError(t, repo.AddMember(ctx, &domain.ChannelMember{ChannelID: "c1", UserID: "u1", Role: domain.MemberRoleOwner}))
	require.NoError(t, repo.AddMember(ctx, &domain.ChannelMember{ChannelID: "c1", UserID: "u1", Role: domain.MemberRoleMember}))
	require.NoError(t, repo.AddMember(ctx, &domain.ChannelMember{ChannelID: "c2", UserID: "u1"}))

	members, err := repo.ListMembers(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, domain.MemberRoleOwner, members[0].Role)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "general", list[0].Name)

	clash := *general
	clash.Name = "random"
	assert.ErrorIs(t, repo.Update(ctx, &clash), repository.ErrDuplicate)

	general.Name = "lobby"
	require.NoError(t, repo.Update(ctx, general))
	got, err := repo.GetByName(ctx, "lobby")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c1", got.ID)

	require.NoError(t, repo.Delete(ctx, "c1"))
	got, err = repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	m, err := repo.GetMember(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Nil(t, m)

	list, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func ids(msgs []domain.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
