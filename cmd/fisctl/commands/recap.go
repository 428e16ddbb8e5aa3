package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/app"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/spf13/cobra"
)

var (
	// Recap flags
	recapDate   string
	recapDryRun bool
)

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Build and send the daily recap once",
	Long: `Collect the rows inserted and soft-deleted on one day and email the summary
to recap.recipients. Without --date the current day in recap.timezone is used.

Examples:
  fisctl recap --dry-run
  fisctl recap --date 2026-01-10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := app.OpenDatabase(cfg, logger)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := app.New(ctx, cfg, db, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		day, err := service.ParseRecapDay(recapDate, a.Services.Recap.Location(), time.Now())
		if err != nil {
			return err
		}
		report, err := a.Services.Recap.Run(ctx, day, recapDryRun)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recapCmd)

	recapCmd.Flags().StringVar(&recapDate, "date", "", "Day to summarise (YYYY-MM-DD)")
	recapCmd.Flags().BoolVar(&recapDryRun, "dry-run", false, "Build the recap without sending it")
}

func printReport(w io.Writer, r *service.RecapReport) {
	fmt.Fprintf(w, "recap %s: %d change(s)\n", r.Day, r.Total)
	for _, s := range r.Sections {
		fmt.Fprintf(w, "  %-12s +%d -%d\n", s.Label, len(s.Inserted), len(s.Deleted))
	}
	switch {
	case r.Sent:
		fmt.Fprintln(w, "sent")
	case r.DryRun:
		fmt.Fprintln(w, "dry run, nothing sent")
	default:
		fmt.Fprintln(w, "nothing sent")
	}
}
