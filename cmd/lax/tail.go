package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/chat"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/render"
)

var (
	tailChannel string
	tailUser    string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow a channel and send stdin lines to it",
	Long: `Follow a channel in the terminal. Every line read from stdin is sent
as a message. "/switch <channel>" changes channel and "/quit" exits.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVar(&tailChannel, "channel", "general", "channel id or name")
	tailCmd.Flags().StringVar(&tailUser, "user", "", "user id to chat as")
	_ = tailCmd.MarkFlagRequired("user")
}

// channelFeed forwards channel events of an in-process backend to the
// channel list once it exists.
type channelFeed struct {
	list atomic.Pointer[chat.ChannelList]
}

func (f *channelFeed) NotifyChannel(evt domain.ChannelEvent) {
	if l := f.list.Load(); l != nil {
		_ = l.Apply(context.Background(), evt)
	}
}

func (f *channelFeed) NotifyNewMessage(*domain.Message)    {}
func (f *channelFeed) NotifyEditedMessage(*domain.Message) {}
func (f *channelFeed) NotifyDeletedMessage(string, string) {}

type stderrNotifier struct{}

func (stderrNotifier) Notify(op string, err error) {
	msg := err.Error()
	var appErr *backend.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	fmt.Fprintf(os.Stderr, "! %s failed: %s\n", op, msg)
}

// screen prints confirmed entries of one channel once, in display order.
// Entries of any other channel are ignored, so a late change from the
// previous channel cannot leak under a new title.
type screen struct {
	mu        sync.Mutex
	out       io.Writer
	r         *render.Renderer
	channelID string
	printed   map[string]bool
}

func (s *screen) reset(channelID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID = channelID
	s.printed = map[string]bool{}
	fmt.Fprintf(s.out, "── %s ──\n", title)
}

func (s *screen) show(entries []chat.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.Pending || e.Message.ChannelID != s.channelID || s.printed[e.Message.ID] {
			continue
		}
		s.printed[e.Message.ID] = true
		fmt.Fprintln(s.out, s.r.Entry(e))
	}
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := &channelFeed{}
	b, closeFn, err := openBackend(ctx, feed)
	if err != nil {
		return err
	}
	defer closeFn()

	users, err := b.GetUsers(ctx)
	if err != nil {
		return err
	}
	renderer := render.New(cmd.OutOrStdout())
	renderer.SetUsers(users)

	list := chat.NewChannelList(b, tailUser, logger)
	if err := list.Load(ctx); err != nil {
		return err
	}
	feed.list.Store(list)

	scr := &screen{out: cmd.OutOrStdout(), r: renderer, printed: map[string]bool{}}
	store := chat.NewStore(b, tailUser,
		chat.WithNotifier(stderrNotifier{}),
		chat.WithLogger(logger),
		chat.WithHistoryLimit(cfg.Client.HistoryLimit),
	)
	store.OnChange(scr.show)

	switchTo := func(name string) error {
		ch, ok := findChannel(list.Channels(), name)
		if !ok {
			return fmt.Errorf("not a member of channel %q", name)
		}
		scr.reset(ch.ID, chat.ChannelTitle(ch, tailUser, users))
		return store.Switch(ctx, ch.ID)
	}
	if err := switchTo(tailChannel); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := chat.NewPoller(store, cfg.Client.PollInterval).Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer stop()
		return readInput(gctx, cmd.InOrStdin(), store, switchTo)
	})
	return g.Wait()
}

// readInput sends each stdin line until EOF, "/quit" or ctx ends.
func readInput(ctx context.Context, in io.Reader, store *chat.Store, switchTo func(string) error) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case line == "/quit":
				return nil
			case strings.HasPrefix(line, "/switch "):
				if err := switchTo(strings.TrimSpace(strings.TrimPrefix(line, "/switch "))); err != nil {
					stderrNotifier{}.Notify("switch", err)
				}
			default:
				if _, err := store.Send(ctx, line); err != nil && !errors.Is(err, chat.ErrSendInFlight) {
					logger.Debug("send_rejected", zap.Error(err))
				}
			}
		}
	}
}

// resolveChannel accepts a channel id or name among the user's channels.
func resolveChannel(ctx context.Context, b backend.Backend, userID, channel string) (string, error) {
	channels, err := b.GetChannels(ctx, userID)
	if err != nil {
		return "", err
	}
	ch, ok := findChannel(channels, channel)
	if !ok {
		return "", fmt.Errorf("not a member of channel %q", channel)
	}
	return ch.ID, nil
}

func findChannel(channels []domain.Channel, idOrName string) (domain.Channel, bool) {
	idOrName = strings.TrimPrefix(idOrName, "#")
	for _, c := range channels {
		if c.ID == idOrName || c.Name == idOrName {
			return c, true
		}
	}
	return domain.Channel{}, false
}
