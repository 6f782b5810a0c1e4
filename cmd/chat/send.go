package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Ask one question and print the streamed answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			message := strings.Join(args, " ")

			for chunk, err := range a.client.Chunks(ctx, a.currentMemoryID(ctx), message) {
				if err != nil {
					fmt.Fprintln(a.out)
					return err
				}
				fmt.Fprint(a.out, chunk)
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
}
