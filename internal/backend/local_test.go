package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository/kv"
	"github.com/vedran77/lax/internal/service"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	db := kv.NewDB(kv.NewMemoryStore())
	return NewLocalFromRepos(kv.NewUserRepo(db), kv.NewChannelRepo(db), kv.NewMessageRepo(db), nil)
}

func TestDMName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DMName("u2", "u1"), DMName("u1", "u2"))
	assert.Equal(t, "dm_u1_u2", DMName("u2", "u1"))
}

func TestLocal_CreateDMFromEitherSide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newLocal(t)

	ann, err := b.CreateUser(ctx, "ann@example.com", "Ann")
	require.NoError(t, err)
	bob, err := b.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	fromAnn, err := b.CreateDM(ctx, DMName(ann.ID, bob.ID), ann.ID, bob.ID)
	require.NoError(t, err)
	fromBob, err := b.CreateDM(ctx, DMName(bob.ID, ann.ID), bob.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, fromAnn.ID, fromBob.ID)

	for _, u := range []*domain.User{ann, bob} {
		channels, err := b.GetChannels(ctx, u.ID)
		require.NoError(t, err)
		var dms int
		for _, c := range channels {
			if c.IsDM() {
				dms++
			}
		}
		assert.Equal(t, 1, dms, u.DisplayName)
	}
}

func TestLocal_SentMessageIsPolled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newLocal(t)

	require.NoError(t, b.Seed(ctx))
	ann, err := b.CreateUser(ctx, "ann@example.com", "Ann")
	require.NoError(t, err)

	channels, err := b.GetChannels(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	general := channels[0]

	sent, err := b.SendMessage(ctx, general.ID, ann.ID, "hello")
	require.NoError(t, err)
	assert.False(t, domain.IsProvisionalID(sent.ID))

	msgs, err := b.GetMessages(ctx, general.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, sent.ID, msgs[0].ID)

	require.NoError(t, b.EditMessage(ctx, sent.ID, "hello!"))
	msgs, err = b.GetMessages(ctx, general.ID, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello!", msgs[0].Body)
	assert.NotNil(t, msgs[0].EditedAt)

	require.NoError(t, b.DeleteMessage(ctx, sent.ID))
	assert.ErrorIs(t, b.DeleteMessage(ctx, sent.ID), service.ErrMessageNotFound)
}

func TestLocal_EmptyListsAreNotNil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newLocal(t)

	channels, err := b.GetChannels(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, channels)

	browsable, err := b.GetBrowsableChannels(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, browsable)

	users, err := b.GetUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)

	msgs, err := b.GetMessages(ctx, "none", nil, 0)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	te := &TransportError{Action: "getMessages", Status: 502, Err: assert.AnError}
	ae := &AppError{Action: "sendMessage", Message: "channel not found"}
	html := &TransportError{Action: "getUsers", Status: 200, Malformed: true, Err: assert.AnError}

	assert.True(t, IsTransport(te))
	assert.False(t, IsApplication(te))
	assert.True(t, IsApplication(ae))
	assert.False(t, IsTransport(ae))
	assert.True(t, IsMalformed(html))
	assert.False(t, IsMalformed(te))
	assert.ErrorIs(t, te, assert.AnError)
	assert.Equal(t, "sendMessage: channel not found", ae.Error())
	assert.Contains(t, html.Error(), "malformed")
}
