package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/farum-router/internal/config"
	"github.com/PabloGalante/farum-router/internal/observability"
)

var (
	// Global flags
	configPath string
	useMock    bool
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "farum-router",
	Short: "Turns spoken-style requests into assistant directives",
	Long: `farum-router classifies free-form utterances into an ordered list of
directives ("open chrome", "play let her go", "general how are you?") that
downstream executors act on.

Run without arguments to start the interactive prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if useMock {
			cfg.Provider = config.ProviderMock
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		// the prompt writes to stdout, keep logs off it
		out := os.Stdout
		if cmd.Name() == "farum-router" || cmd.Name() == "repl" || cmd.Name() == "classify" {
			out = os.Stderr
		}
		return observability.Configure(cfg.LogLevel, cfg.LogFormat, out)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context())
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive prompt, one utterance per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context())
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify [utterance]",
	Short: "Classify a single utterance and print the directives as JSON",
	Example: `  farum-router classify open chrome and play let her go
  farum-router --mock classify "what's the weather in paris?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume utterances from RabbitMQ and publish directives",
	Args:  cobra.NoArgs,
	RunE:  runWorker,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env: "+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use the offline mock model")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(replCmd, classifyCmd, serveCmd, workerCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// restore default signal handling once the first signal arrives, so a
	// second Ctrl-C terminates a process stuck in shutdown
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
