package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/venlin/kern/internal/api"
	"github.com/venlin/kern/internal/builtin"
	"github.com/venlin/kern/internal/config"
	"github.com/venlin/kern/internal/history"
	"github.com/venlin/kern/internal/kernel"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the kern server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		configPath, _ := cmd.Flags().GetString("config")
		immediate, _ := cmd.Flags().GetBool("fire-on-start")

		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
		}
		if addr != "" {
			cfg.Listen = addr
		}

		log.Info().Msg("Initializing task registry...")
		registry := kernel.NewRegistry()
		if err := builtin.RegisterAll(registry); err != nil {
			return fmt.Errorf("registering builtin tasks: %w", err)
		}

		store, err := buildHistoryStore(cfg)
		if err != nil {
			return fmt.Errorf("building history store: %w", err)
		}
		defer func() {
			_ = store.Close()
		}()

		shared := kernel.NewState(cfg.State)

		invokerOpts := []kernel.InvokerOption{kernel.WithRecordSink(store)}
		if cfg.RunTimeout > 0 {
			invokerOpts = append(invokerOpts, kernel.WithRunTimeout(cfg.RunTimeout))
		}
		invoker := kernel.NewInvoker(registry, shared, invokerOpts...)

		var schedulerOpts []kernel.SchedulerOption
		if immediate {
			schedulerOpts = append(schedulerOpts, kernel.WithImmediateFirstFire())
		}
		scheduler := kernel.NewScheduler(registry, invoker, schedulerOpts...)

		// schedule misconfiguration must fail startup, not get swallowed
		log.Info().Msgf("Scheduling %d entries...", len(cfg.Schedule))
		for _, entry := range cfg.Schedule {
			if err := scheduler.ScheduleEvery(entry.Every, entry.Task, entry.Args); err != nil {
				return fmt.Errorf("scheduling task '%s': %w", entry.Task, err)
			}
		}

		var serverOpts []api.ServerOption
		if cfg.AuthTokenEnv != "" {
			if token := os.Getenv(cfg.AuthTokenEnv); token != "" {
				log.Info().Msgf("API auth enabled via %s", cfg.AuthTokenEnv)
				serverOpts = append(serverOpts, api.WithAuthToken(token))
			}
		}
		srv := api.NewServer(registry, invoker, scheduler, store, serverOpts...)

		server := &http.Server{
			Addr:    cfg.Listen,
			Handler: srv.Routes(),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", cfg.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := scheduler.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("scheduler did not drain in time")
		}
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func buildHistoryStore(cfg *config.Config) (history.Store, error) {
	switch cfg.History.Type {
	case "", "memory":
		return history.NewMemoryStore(cfg.History.Limit), nil
	case "sqlite":
		return history.NewSQLiteStore(cfg.History.Path)
	default:
		return nil, fmt.Errorf("unknown history type '%s'", cfg.History.Type)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides config)")
	serveCmd.Flags().String("config", "", "path to the server configuration file")
	serveCmd.Flags().Bool("fire-on-start", false, "fire scheduled entries once at startup instead of after the first interval")
}
