package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flokiorg/lokirent/api"
	"github.com/flokiorg/lokirent/service"
)

func statsCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show rental and revenue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				stats, err := api.NewAPI(svc).GetStats(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func rentalsCmd(open serviceOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rentals",
		Short: "List rentals, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &api.ListRentalsRequest{}
			request.Page, _ = cmd.Flags().GetInt("page")
			request.Limit, _ = cmd.Flags().GetInt("limit")
			request.Status, _ = cmd.Flags().GetString("status")

			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				response, err := api.NewAPI(svc).ListRentals(ctx, request)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), response)
			})
		},
	}

	cmd.Flags().IntP("page", "p", 1, "Page number")
	cmd.Flags().IntP("limit", "n", 50, "Rentals per page")
	cmd.Flags().StringP("status", "s", "", "Filter by status (active, expired, banned)")

	return cmd
}

func sweepCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire lapsed rentals and stale orders once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				result, err := svc.GetRentalsService().ExpirySweep(ctx)
				if err != nil {
					return err
				}
				staleOrders, err := svc.GetOrdersService().ExpireStaleOrders(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d rentals (%d failed), %d stale orders\n", result.Expired, result.Failed, staleOrders)
				return nil
			})
		},
	}
}

func banCmd(open serviceOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ban [username]",
		Short: "Ban a username and revoke its rental",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &api.BanRequest{}
			if reason, _ := cmd.Flags().GetString("reason"); reason != "" {
				request.Reason = &reason
			}
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				if err := api.NewAPI(svc).BanUser(ctx, normalizeArg(args[0]), request); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "banned")
				return nil
			})
		},
	}

	cmd.Flags().StringP("reason", "r", "", "Ban reason")

	return cmd
}

func unbanCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "unban [username]",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				if err := api.NewAPI(svc).UnbanUser(ctx, normalizeArg(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "unbanned")
				return nil
			})
		},
	}
}

func extendCmd(open serviceOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extend [username]",
		Short: "Extend a rental by a number of minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, _ := cmd.Flags().GetUint64("minutes")
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				if err := api.NewAPI(svc).ExtendRental(ctx, normalizeArg(args[0]), &api.ExtendRequest{Minutes: minutes}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "extended")
				return nil
			})
		},
	}

	cmd.Flags().Uint64P("minutes", "m", 0, "Minutes to add")
	_ = cmd.MarkFlagRequired("minutes")

	return cmd
}

func revokeCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke [username]",
		Short: "Expire an active rental immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc service.Service) error {
				if err := api.NewAPI(svc).RevokeRental(ctx, normalizeArg(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "revoked")
				return nil
			})
		},
	}
}

func normalizeArg(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
