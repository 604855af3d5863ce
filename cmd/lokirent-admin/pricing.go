package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/flokiorg/lokirent/api"
	"github.com/flokiorg/lokirent/pricing"
	"github.com/flokiorg/lokirent/service"
)

func pricingCmd(open serviceOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Show or replace the pricing table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective pricing table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				table, err := api.NewAPI(svc).GetPricing(ctx)
				if err != nil {
					return err
				}
				data, err := pricing.FormatTable(table)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import [file]",
		Short: "Replace the stored pricing table with a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			table, err := pricing.ParseTable(data)
			if err != nil {
				return err
			}
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				resolved, err := api.NewAPI(svc).UpdatePricing(ctx, table)
				if err != nil {
					return err
				}
				data, err := pricing.FormatTable(resolved)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	})

	return cmd
}
