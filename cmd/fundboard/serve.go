package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	common.PrintBanner(a.Config, a.Logger)

	if err := server.NewServer(a).Run(ctx); err != nil {
		return err
	}

	common.PrintShutdownBanner(a.Logger)
	return nil
}
