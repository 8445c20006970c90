package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vedran77/lax/internal/format"
)

var (
	sendChannel string
	sendUser    string
)

var sendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send one message to a channel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		body := format.ExpandSlash(strings.Join(args, " "))
		if strings.TrimSpace(body) == "" {
			return errors.New("message is empty")
		}

		b, closeFn, err := openBackend(ctx, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		channelID, err := resolveChannel(ctx, b, sendUser, sendChannel)
		if err != nil {
			return err
		}
		msg, err := b.SendMessage(ctx, channelID, sendUser, body)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg.ID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendChannel, "channel", "general", "channel id or name")
	sendCmd.Flags().StringVar(&sendUser, "user", "", "sending user id")
	_ = sendCmd.MarkFlagRequired("user")
}
