package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/server"
)

func newDBHealthCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "dbhealth",
		Short: "Check that the run ledger is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ledger, err := server.ConnectLedger(ctx, cfg.Ledger, logger)
			if err != nil {
				console.Error("Ledger health: FAIL (%v)", err)
				return err
			}
			if ledger == nil {
				console.Info("Ledger is disabled (LEDGER_DSN=%s)", common.LedgerDisabled)
				return nil
			}
			defer ledger.Close()

			if err := ledger.Ping(ctx, timeout); err != nil {
				console.Error("Ledger health: FAIL (%v)", err)
				return err
			}
			console.Success("Ledger health: OK (%s)", ledger.DB.Dialect())

			recent, err := ledger.Jobs.Recent(ctx, 1)
			if err != nil {
				return err
			}
			if len(recent) > 0 {
				console.Info("Last run %s: %s %s", recent[0].StartedAt.Local().Format(time.RFC3339), recent[0].Stage, recent[0].Status)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
