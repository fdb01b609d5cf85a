package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"agentic-rag/internal/config"
	"agentic-rag/internal/logging"
)

var (
	configPath string
	envFile    string
	debug      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agentic-rag",
		Short:         "Chat with a PDF backed by a local model and web search",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.agentic-rag/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with search credentials")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "write debug entries to the log file")

	root.AddCommand(&cobra.Command{
		Use:   "chat",
		Short: "Start the terminal chat (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the chat over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	return root
}

// loadSettings reads the env file and config, then starts logging
func loadSettings(console bool) (*config.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logPath := cfg.Log.FilePath
	if logPath != "" && !filepath.IsAbs(logPath) {
		if home, err := os.UserHomeDir(); err == nil {
			logPath = filepath.Join(home, logPath)
		}
	}

	if err := logging.Init(logging.Options{
		FilePath: logPath,
		Console:  console,
		Debug:    debug || cfg.Log.Debug,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}
