package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/chat"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/render"
	"github.com/vedran77/lax/internal/repository/kv"
)

func TestFindChannel(t *testing.T) {
	channels := []domain.Channel{{ID: "c1", Name: "general"}, {ID: "c2", Name: "random"}}

	ch, ok := findChannel(channels, "#random")
	require.True(t, ok)
	assert.Equal(t, "c2", ch.ID)

	ch, ok = findChannel(channels, "c1")
	require.True(t, ok)
	assert.Equal(t, "general", ch.Name)

	_, ok = findChannel(channels, "ops")
	assert.False(t, ok)
}

func TestReadInput_SendsLinesUntilQuit(t *testing.T) {
	logger = zap.NewNop()
	ctx := context.Background()

	db := kv.NewDB(kv.NewMemoryStore())
	local := backend.NewLocalFromRepos(kv.NewUserRepo(db), kv.NewChannelRepo(db), kv.NewMessageRepo(db), nil)
	require.NoError(t, local.Seed(ctx))
	ann, err := local.CreateUser(ctx, "ann@example.com", "Ann")
	require.NoError(t, err)

	general, err := resolveChannel(ctx, local, ann.ID, "general")
	require.NoError(t, err)

	var out bytes.Buffer
	scr := &screen{out: &out, r: render.New(&out), printed: map[string]bool{}}
	scr.reset(general, "#general")
	store := chat.NewStore(local, ann.ID)
	store.OnChange(scr.show)
	require.NoError(t, store.Switch(ctx, general))

	in := strings.NewReader("hello\n\n/shrug\n/quit\nnever sent\n")
	require.NoError(t, readInput(ctx, in, store, func(string) error { return nil }))

	msgs, err := local.GetMessages(ctx, general, nil, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Body)
	assert.Equal(t, `¯\_(ツ)_/¯`, msgs[1].Body)

	assert.Equal(t, 1, strings.Count(out.String(), "hello"))
}

func TestScreen_IgnoresOtherChannels(t *testing.T) {
	var out bytes.Buffer
	scr := &screen{out: &out, r: render.New(&out), printed: map[string]bool{}}

	scr.reset("c2", "#random")
	scr.show([]chat.Entry{
		{Message: domain.Message{ID: "m1", ChannelID: "c1", Body: "stale"}},
		{Message: domain.Message{ID: "m2", ChannelID: "c2", Body: "fresh"}},
		{Message: domain.Message{ID: "m3", ChannelID: "c2", Body: "sending"}, Pending: true},
	})
	scr.show([]chat.Entry{{Message: domain.Message{ID: "m2", ChannelID: "c2", Body: "fresh"}}})

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "── #random ──\n"))
	assert.NotContains(t, got, "stale")
	assert.NotContains(t, got, "sending")
	assert.Equal(t, 1, strings.Count(got, "fresh"))
}
