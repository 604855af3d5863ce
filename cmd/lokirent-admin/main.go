package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flokiorg/lokirent/pkg/version"
	"github.com/flokiorg/lokirent/service"
)

// serviceOpener returns a started service and the function that shuts it down.
type serviceOpener func(ctx context.Context) (service.Service, func(), error)

func openService(ctx context.Context) (service.Service, func(), error) {
	svc, err := service.NewService(ctx, service.WithoutSweeper())
	if err != nil {
		return nil, nil, err
	}
	return svc, svc.Shutdown, nil
}

func main() {
	if err := newRootCmd(openService).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open serviceOpener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lokirent-admin",
		Short:         "Administer a lokirent store from the command line",
		Version:       version.Tag,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(statsCmd(open))
	rootCmd.AddCommand(rentalsCmd(open))
	rootCmd.AddCommand(sweepCmd(open))
	rootCmd.AddCommand(banCmd(open))
	rootCmd.AddCommand(unbanCmd(open))
	rootCmd.AddCommand(extendCmd(open))
	rootCmd.AddCommand(revokeCmd(open))
	rootCmd.AddCommand(pricingCmd(open))

	return rootCmd
}

// withService opens the service for the duration of fn.
func withService(cmd *cobra.Command, open serviceOpener, fn func(ctx context.Context, svc service.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, shutdown, err := open(ctx)
	if err != nil {
		return err
	}
	defer shutdown()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
