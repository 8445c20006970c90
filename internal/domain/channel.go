package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ChannelKindGroup = "channel"
	ChannelKindDM    = "dm"

	MemberRoleOwner  = "owner"
	MemberRoleMember = "member"

	// DefaultChannelName is the channel every new user joins.
	DefaultChannelName = "general"

	SystemUserID = "system"
)

var dmNamespace = uuid.MustParse("6f1c2a4e-3d0b-5b8e-9a51-7c4e0f2d1a90")

type Channel struct {
	ID        string    `json:"channel_id"`
	Name      string    `json:"channel_name"`
	IsPrivate bool      `json:"is_private"`
	Kind      string    `json:"type"`
	OwnerID   string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Channel) IsDM() bool {
	return c.Kind == ChannelKindDM
}

type ChannelMember struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// DMName returns the canonical name of the direct-message channel between
// two users. Argument order does not matter.
func DMName(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return "dm_" + ids[0] + "_" + ids[1]
}

// DMChannelID derives the channel id from the canonical DM name.
func DMChannelID(name string) string {
	return uuid.NewSHA1(dmNamespace, []byte(name)).String()
}

// DMParticipants splits a canonical DM name back into its two user ids.
// Ids containing underscores are not supported by the naming scheme.
func DMParticipants(name string) (string, string, bool) {
	rest, ok := strings.CutPrefix(name, "dm_")
	if !ok {
		return "", "", false
	}
	a, b, ok := strings.Cut(rest, "_")
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}
