package main

import (
	"fmt"
	"os"
	"time"

	"slavemarket/internal/lease"
	"slavemarket/internal/report"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored contracts to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from == "" {
				from = time.Now().Format(lease.DateLayout)
			}
			if to == "" {
				to = from
			}
			if out == "" {
				out = fmt.Sprintf("contracts_%s_%s.xlsx", from, to)
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			contracts, err := a.leases.Contracts(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteContracts(f, contracts); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			a.logger.Info().Str("path", out).Int("contracts", len(contracts)).Msg("report written")
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default --from)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default contracts_<from>_<to>.xlsx)")
	return cmd
}
