package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/dayboard/internal/api"
	"github.com/kalambet/dayboard/internal/config"
	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/responder"
	"github.com/kalambet/dayboard/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dayboard HTTP API (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running dayboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dayboard server and datastore status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "dayboard.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// openStore opens the datastore selected by cfg.Storage.
func openStore(cfg config.Config) (*storage.Store, error) {
	store, err := storage.OpenWith(storage.Options{
		Driver:      cfg.Storage.Driver,
		DataDir:     cfg.Storage.DataDir,
		DatabaseURL: cfg.Storage.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}

// newResponder returns nil when reflections cannot be served, so that
// callers see a nil interface rather than a typed nil pointer.
func newResponder(cfg config.Config) api.Responder {
	switch cfg.Responder.Provider {
	case "ollama":
		return responder.NewOllamaClient(cfg.Responder.OllamaURL, cfg.Responder.Model, cfg.Responder.Timeout)
	default:
		if cfg.Responder.APIKey == "" {
			return nil
		}
		return responder.NewClientWithBaseURL(cfg.Responder.APIKey, cfg.Responder.BaseURL, cfg.Responder.Timeout)
	}
}

func plannerClock(cfg config.Config) (planner.Clock, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return planner.SystemClock(loc), nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "dayboard version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg, os.Stderr)

	// Refuse to start twice on the same port.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("dayboard is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("dayboard is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock, err := plannerClock(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)
	slog.Info("datastore ready", "driver", store.Driver())

	resp := newResponder(cfg)
	if resp == nil {
		slog.Warn("responder API key not set; journal reflections are disabled")
	} else {
		slog.Info("responder ready", "provider", cfg.Responder.Provider)
	}
	if cfg.Server.APIToken == "" {
		slog.Warn("server.api_token not set; /api routes are unauthenticated")
	}

	handler := api.NewHandler(api.Deps{
		Store:     store,
		Responder: resp,
		Clock:     clock,
		Token:     cfg.Server.APIToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("dayboard listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("dayboard is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop dayboard (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to dayboard (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}
	client.httpClient.Timeout = 2 * time.Second

	running := serverHealthy(ctx, client)
	if running {
		printStatus("Server", "running on port %d", cfg.Server.Port)
		printStatus("Datastore", "%s", datastoreStatus(ctx, client))
	} else {
		printStatus("Server", "stopped")
	}

	printStatus("Driver", "%s", cfg.Storage.Driver)
	if cfg.Storage.Driver == storage.DriverSQLite {
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
	}
	printStatus("Timezone", "%s", cfg.Planner.Timezone)
	printStatus("Responder", "%s", responderStatus(ctx, cfg))
	return nil
}

func responderStatus(ctx context.Context, cfg config.Config) string {
	if cfg.Responder.Provider != "ollama" {
		if cfg.Responder.APIKey == "" {
			return "disabled (no API key)"
		}
		return fmt.Sprintf("huggingface (%s)", cfg.Responder.BaseURL)
	}

	oc := responder.NewOllamaClient(cfg.Responder.OllamaURL, cfg.Responder.Model, cfg.Responder.Timeout)
	switch {
	case !oc.IsRunning(ctx):
		return fmt.Sprintf("ollama not running at %s (start it with: ollama serve)", cfg.Responder.OllamaURL)
	case !oc.HasModel(ctx):
		return fmt.Sprintf("ollama model %s missing (run: ollama pull %s)", oc.Model(), oc.Model())
	default:
		return fmt.Sprintf("ollama %s ready", oc.Model())
	}
}

func serverHealthy(ctx context.Context, client *apiClient) bool {
	resp, err := client.get(ctx, "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func datastoreStatus(ctx context.Context, client *apiClient) string {
	resp, err := client.get(ctx, "/api/datastore-check")
	if err != nil {
		return "unknown: " + err.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return "unknown: unauthorized (check server.api_token)"
	}

	// A failing check still carries a DatastoreStatus body.
	var st api.DatastoreStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return "unknown: " + err.Error()
	}
	if st.Status != "ok" {
		return fmt.Sprintf("error: %s", st.Message)
	}
	return st.Message
}
