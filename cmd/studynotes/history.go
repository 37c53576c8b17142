package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/studynotes/internal/common"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent extraction and generation runs from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			jobs := a.ledger.JobsRepo()
			if jobs == nil {
				return common.NewConfigurationError("the run ledger is disabled (LEDGER_DSN=off)", nil)
			}
			recent, err := jobs.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}
			if len(recent) == 0 {
				console.Info("No runs recorded yet. Point LEDGER_DSN at a SQLite file or Postgres URL to keep history between runs.")
				return nil
			}

			rows := make([][]string, 0, len(recent))
			for _, j := range recent {
				kind := j.Kind
				if kind == "" {
					kind = "-"
				}
				rows = append(rows, []string{
					j.StartedAt.Local().Format("2006-01-02 15:04:05"),
					j.Filename,
					j.Stage,
					kind,
					j.Status,
					strconv.Itoa(j.InputChars),
					strconv.Itoa(j.OutputChars),
					strconv.FormatInt(j.Elapsed().Milliseconds(), 10),
				})
			}
			console.Table([]string{"STARTED", "FILE", "STAGE", "KIND", "STATUS", "IN", "OUT", "MS"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
