package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-indust/critics/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API with streaming reviews",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	_ = viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("addr"))
	serveCmd.Flags().StringSlice("allow-origin", nil, "cross-origin page allowed to open review WebSockets (repeatable, * for any)")
	_ = viper.BindPFlag("allowed_origins", serveCmd.Flags().Lookup("allow-origin"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.svc, a.checks()...)
	srv.AllowOrigins(a.cfg.AllowedOrigins...)
	addr, err := srv.Start(a.cfg.ListenAddr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "critics %s listening on http://%s\n", version, addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
