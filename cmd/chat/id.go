package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/ai-code-helper/client/internal/service/session"
)

func newIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print a fresh chat id and the session memory id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "chatId   %s\n", session.GenerateChatID())
			fmt.Fprintf(a.out, "memoryId %d\n", a.currentMemoryID(cmd.Context()))
			return nil
		},
	}
}
