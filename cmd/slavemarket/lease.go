package main

import (
	"encoding/json"
	"fmt"

	"slavemarket/internal/lease"

	"github.com/spf13/cobra"
)

func newLeaseCmd() *cobra.Command {
	var req lease.Request
	cmd := &cobra.Command{
		Use:     "lease",
		Short:   "Lease a slave for an hour range and store the contract",
		Example: `  slavemarket lease --master 1 --slave 2 --from "2017-01-01 01:30:00" --to "2017-01-01 02:01:00"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.leases.Lease(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !resp.OK() {
				for _, msg := range resp.Messages() {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				return fmt.Errorf("lease rejected")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp.Contract)
		},
	}

	cmd.Flags().Int64Var(&req.MasterID, "master", 0, "master id")
	cmd.Flags().Int64Var(&req.SlaveID, "slave", 0, "slave id")
	cmd.Flags().StringVar(&req.TimeFrom, "from", "", "start time, e.g. \"2017-01-01 01:30:00\"")
	cmd.Flags().StringVar(&req.TimeTo, "to", "", "end time, e.g. \"2017-01-01 02:01:00\"")
	for _, name := range []string{"master", "slave", "from", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
