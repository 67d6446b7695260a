package main

import (
	"fmt"
	"io"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type leadsFlags struct {
	status   string
	category string
	limit    int
	offset   int
}

func newLeadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect and update saved leads",
	}
	store := &storeFlags{}
	store.register(cmd.PersistentFlags())
	cmd.AddCommand(newLeadsListCmd(a, store), newLeadsStatusCmd(a, store))
	return cmd
}

func newLeadsListCmd(a *app, store *storeFlags) *cobra.Command {
	var flags leadsFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved leads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store.apply(a.cfg)
			filter := storage.Filter{
				Category: flags.category,
				Limit:    flags.limit,
				Offset:   flags.offset,
			}
			if flags.status != "" {
				st, err := lead.ParseStatus(flags.status)
				if err != nil {
					return err
				}
				filter.Status = st
			}

			b, err := openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			leads, err := b.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printLeads(cmd.OutOrStdout(), leads)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "", "only leads with this status")
	cmd.Flags().StringVar(&flags.category, "category", "", "only leads from this category")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "maximum number of leads")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "skip this many leads")
	return cmd
}

func newLeadsStatusCmd(a *app, store *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <status>",
		Short:     "Move a lead to another pipeline status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: statusNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store.apply(a.cfg)
			st, err := lead.ParseStatus(args[1])
			if err != nil {
				return err
			}

			b, err := openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.UpdateStatus(cmd.Context(), args[0], st); err != nil {
				return fmt.Errorf("lead %s: %w", args[0], err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s → %s\n", args[0], st)
			return nil
		},
	}
}

func statusNames() []string {
	out := make([]string, len(lead.Statuses))
	for i, s := range lead.Statuses {
		out[i] = string(s)
	}
	return out
}

func printLeads(w io.Writer, leads []*lead.Lead) {
	if len(leads) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No leads.")
		return
	}
	id := color.New(color.FgCyan).SprintFunc()
	name := color.New(color.Bold).SprintFunc()
	for _, l := range leads {
		fmt.Fprintf(w, "%s  %-12s %s\n", id(l.ID), l.Status, name(l.Company.Name))
		if l.Company.Email != "" {
			fmt.Fprintf(w, "    %s\n", l.Company.Email)
		}
		if l.Company.Website != "" {
			fmt.Fprintf(w, "    %s\n", l.Company.Website)
		}
	}
}
