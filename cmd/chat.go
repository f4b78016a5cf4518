package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/pkg/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Ask the urban planning assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gw, err := initChat()
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		answer, err := gw.Ask(ctx, prompt)
		if err != nil {
			var chatErr *chat.Error
			if errors.As(err, &chatErr) {
				zap.L().Error("assistant request failed",
					zap.String("class", string(chatErr.Class)),
					zap.Error(err),
				)
				fmt.Fprintln(cmd.ErrOrStderr(), chatErr.UserMessage())
				return err
			}
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
