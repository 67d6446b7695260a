package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/FranksOps/leadscout/internal/pipeline"
	"github.com/FranksOps/leadscout/internal/report"
	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type searchFlags struct {
	max    int
	store  bool
	db     storeFlags
	format string
}

func newSearchCmd(a *app) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <category...>",
		Short: "Discover companies for a category",
		Example: `  leadscout search кейтеринг Томск
  leadscout search --max 5 --store --format json "клининговые компании"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max") {
				a.cfg.Search.Max = flags.max
			}
			flags.db.apply(a.cfg)
			return a.search(cmd, strings.Join(args, " "), flags)
		},
	}

	cmd.Flags().IntVarP(&flags.max, "max", "n", 10, "maximum number of companies")
	cmd.Flags().BoolVar(&flags.store, "store", false, "save new companies as leads")
	flags.db.register(cmd.Flags())
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "output format: text, json, html")
	return cmd
}

func (a *app) search(cmd *cobra.Command, category string, flags searchFlags) error {
	write, err := reportWriter(flags.format)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	searcher, err := buildSearcher(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	out := searcher.Search(ctx, category, a.cfg.Search.Max)
	summary := report.Summarize(category, out)

	if flags.store {
		b, err := openStore(ctx, a.cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		added, err := storage.Import(ctx, b, category, out.Companies)
		if err != nil {
			return err
		}
		summary.Imported = added
		a.logger.Info("leads imported",
			zap.String("category", category),
			zap.Int("added", added),
			zap.Int("found", len(out.Companies)),
		)
	}

	if flags.format == "text" && out.Path == pipeline.PathFixture {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "Showing sample companies: live search was unavailable.")
	}
	return write(cmd.OutOrStdout(), summary)
}

func reportWriter(format string) (func(io.Writer, report.Summary) error, error) {
	switch format {
	case "text":
		return report.WriteText, nil
	case "json":
		return report.WriteJSON, nil
	case "html":
		return report.WriteHTML, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text, json or html)", format)
	}
}
