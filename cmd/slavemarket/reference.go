package main

import (
	"fmt"

	"slavemarket/internal/model"

	"github.com/spf13/cobra"
)

func newMasterCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "master", Short: "Manage masters"}

	var m model.Master
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a master",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.CreateMaster(cmd.Context(), &m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "master #%d %q vip=%t\n", m.ID, m.Name, m.VIP)
			return nil
		},
	}
	add.Flags().Int64Var(&m.ID, "id", 0, "explicit id (default auto)")
	add.Flags().StringVar(&m.Name, "name", "", "display name")
	add.Flags().BoolVar(&m.VIP, "vip", false, "VIP masters override leases of regular masters")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}

func newSlaveCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "slave", Short: "Manage slaves"}

	var s model.Slave
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a slave",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.CreateSlave(cmd.Context(), &s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "slave #%d %q price=%.2f\n", s.ID, s.Name, s.PricePerHour)
			return nil
		},
	}
	add.Flags().Int64Var(&s.ID, "id", 0, "explicit id (default auto)")
	add.Flags().StringVar(&s.Name, "name", "", "display name")
	add.Flags().Float64Var(&s.PricePerHour, "price", 0, "price per hour")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}
