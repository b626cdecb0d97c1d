package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solatis/codematch/internal/core/api"
	"github.com/solatis/codematch/internal/core/auth"
	"github.com/solatis/codematch/internal/core/config"
	"github.com/solatis/codematch/internal/core/db"
	"github.com/solatis/codematch/internal/core/metrics"
	"github.com/solatis/codematch/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC code API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
	serveCmd.Flags().Int("metrics-port", 9090, "Prometheus metrics port (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, cfg, err := loadRegistry()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.CodeAPI.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.CodeAPI.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.CodeAPI.MetricsPort, _ = cmd.Flags().GetInt("metrics-port")
	}

	database, queries, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := requireMigrated(ctx, database); err != nil {
		return err
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return auth.ErrNoSecrets
	}

	authenticator := auth.NewAuthenticator(secrets, queries)

	service, err := api.NewCodeService(registry, db.NewJournal(queries), &cfg.CodeAPI)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(&cfg.CodeAPI, service, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info().
		Str("version", Version).
		Str("addr", grpcServer.Addr()).
		Int("templates", len(registry.Templates())).
		Msg("starting codematch code API")

	errChan := make(chan error, 2)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()
	if cfg.CodeAPI.MetricsPort != 0 {
		addr := net.JoinHostPort(cfg.CodeAPI.Host, strconv.Itoa(cfg.CodeAPI.MetricsPort))
		go func() {
			if err := metrics.ListenAndServe(ctx, addr); err != nil {
				errChan <- err
			}
		}()
	}

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return grpcServer.Shutdown(shutdownCtx)
	}
}
