package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/blockberries/testtube/config"
	testtubegrpc "github.com/blockberries/testtube/grpc"
	"github.com/blockberries/testtube/internal/logging"
	"github.com/blockberries/testtube/simapp"
)

func newRootCmd(outW io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "testtube-engine",
		Short:         "Simulated Injective chain engine for integration tests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a fresh engine over gRPC",
		Long: `Start an empty engine and serve it over gRPC until interrupted.

The engine waits for a test app to connect and run genesis. Chain
parameters travel in the genesis document, so the chain block of the
config file only matters to test apps built from the same file.`,
		Example: `  # Serve on the default address
  testtube-engine serve

  # Serve with a config file and a different port
  testtube-engine serve --config engine.hcl --listen 127.0.0.1:9901`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if listen != "" {
				cfg.Engine.Listen = listen
			}

			logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
			lis, err := net.Listen("tcp", cfg.Engine.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Engine.Listen, err)
			}
			return serveEngine(cmd.Context(), lis, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to an HCL config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides engine.listen")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "testtube-engine %s\n", simapp.Version)
		},
	}
}

// serveEngine serves a new simapp on lis until ctx is done, then stops
// gracefully. lis is closed on return.
func serveEngine(ctx context.Context, lis net.Listener, logger *slog.Logger) error {
	engine := simapp.New(simapp.WithLogger(logger))
	gs := testtubegrpc.NewGRPCServer(engine, logger).NewServer()

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()
	logger.Info("engine listening", "addr", lis.Addr().String(), "version", simapp.Version)

	select {
	case <-ctx.Done():
		logger.Info("engine shutting down")
		gs.GracefulStop()
		<-errCh
		return nil
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}
}
