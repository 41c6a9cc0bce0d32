package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/telvox/callbridge/cmd/callbridge/internal/config"
	"github.com/telvox/callbridge/pkg/bridge"
	"github.com/telvox/callbridge/pkg/callcfg"
	"github.com/telvox/callbridge/pkg/kv"
	"github.com/telvox/callbridge/pkg/openairt"
)

var flagConfig string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the media-stream bridge server",
	Long: `Run the bridge server.

The server exposes GET /media-stream, the websocket endpoint the telephony
provider connects each call's media stream to. Every accepted stream is
bridged to its own realtime model session.

Example:
  callbridge serve --config /etc/callbridge/config.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	if IsVerbose() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, err := openStore(cfg.Store.Dir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	var clientOpts []openairt.Option
	if cfg.OpenAI.Organization != "" {
		clientOpts = append(clientOpts, openairt.WithOrganization(cfg.OpenAI.Organization))
	}
	if cfg.OpenAI.Project != "" {
		clientOpts = append(clientOpts, openairt.WithProject(cfg.OpenAI.Project))
	}
	client := openairt.NewClient(cfg.OpenAI.APIKey, clientOpts...)

	handler := bridge.NewHandler(bridge.Config{
		Model:                cfg.OpenAI.Model,
		Voice:                cfg.Call.Voice,
		Greeting:             cfg.Call.Greeting,
		Instructions:         cfg.Call.Instructions,
		VADThreshold:         cfg.Call.VADThreshold,
		VADPrefixPaddingMs:   cfg.Call.VADPrefixPaddingMs,
		VADSilenceDurationMs: cfg.Call.VADSilenceDurationMs,
	}, client, callcfg.NewStore(store), logger)

	mux := http.NewServeMux()
	mux.Handle("GET /media-stream", handler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore opens the call-config store: badger on disk when a directory is
// configured, in-memory otherwise.
func openStore(dir string) (kv.Store, error) {
	if dir == "" {
		return kv.NewMemory(), nil
	}
	return kv.NewBadger(kv.BadgerOptions{Dir: dir})
}
