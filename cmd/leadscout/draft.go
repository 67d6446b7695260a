package main

import (
	"fmt"

	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDraftCmd(a *app) *cobra.Command {
	var store storeFlags

	cmd := &cobra.Command{
		Use:   "draft <id>",
		Short: "Write an outreach email for a saved lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store.apply(a.cfg)
			ctx := cmd.Context()

			b, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			found, err := b.Query(ctx, storage.Filter{ID: args[0], Limit: 1})
			if err != nil {
				return err
			}
			if len(found) == 0 {
				return fmt.Errorf("lead %s: %w", args[0], storage.ErrNotFound)
			}
			l := found[0]

			drafter, err := buildDrafter(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			d := drafter.Draft(ctx, l.Company, l.Category)

			w := cmd.OutOrStdout()
			label := color.New(color.FgCyan).SprintFunc()
			if l.Company.Email != "" {
				fmt.Fprintf(w, "%s %s\n", label("To:"), l.Company.Email)
			}
			fmt.Fprintf(w, "%s %s\n\n%s\n", label("Subject:"), d.Subject, d.Body)
			return nil
		},
	}

	store.register(cmd.Flags())
	return cmd
}
