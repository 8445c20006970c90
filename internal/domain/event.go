package domain

// ChannelEvent signals a change to the channel list. Exactly one of the
// concrete event types below is carried.
type ChannelEvent interface {
	ChannelID() string
	channelEvent()
}

type ChannelCreated struct {
	Channel Channel
}

type ChannelUpdated struct {
	Channel Channel
}

type ChannelDeleted struct {
	ID string
}

// ChannelNeedsRefresh asks the holder of a channel list to refetch it.
type ChannelNeedsRefresh struct {
	ID string
}

func (e ChannelCreated) ChannelID() string      { return e.Channel.ID }
func (e ChannelUpdated) ChannelID() string      { return e.Channel.ID }
func (e ChannelDeleted) ChannelID() string      { return e.ID }
func (e ChannelNeedsRefresh) ChannelID() string { return e.ID }

func (ChannelCreated) channelEvent()      {}
func (ChannelUpdated) channelEvent()      {}
func (ChannelDeleted) channelEvent()      {}
func (ChannelNeedsRefresh) channelEvent() {}
