package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newLocaleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locale [code]",
		Short: "Show or set the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				code := args[0]
				if !slices.Contains(a.i18n.Locales(), code) {
					return fmt.Errorf("unknown locale %q (available: %s)", code, strings.Join(a.i18n.Locales(), ", "))
				}
				a.i18n.SetLocale(cmd.Context(), code)
			}
			fmt.Fprintln(a.out, a.i18n.Locale())
			return nil
		},
	}
}
