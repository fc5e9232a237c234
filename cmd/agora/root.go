package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agora/internal/agent"
	"agora/internal/logging"
	"agora/internal/orchestrate"
	"agora/internal/panel"
	"agora/internal/service"
	"agora/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	dbPath     string
	caller     string
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Multi-expert decision debates with readiness assessment",
	Long: "Agora runs structured debates between simulated expert personas over a\n" +
		"decision question, scores consensus and argument quality, and converts\n" +
		"provider cost into billable credits.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Config file path (default: agora.yaml if present)")
	pf.StringVar(&rootFlags.dbPath, "db", "", "Store DB path (default from config, then "+store.DefaultDBPath+")")
	pf.StringVar(&rootFlags.caller, "caller", "", "Caller identity owning debates (default: $AGORA_CALLER, then \"local\")")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(creditsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(rootFlags.configPath)
	if err != nil {
		return err
	}
	levelName := rootFlags.logLevel
	if levelName == "" {
		levelName = cfg.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	format := rootFlags.logFormat
	if format == "" {
		format = cfg.LogFormat
	}
	logging.Init(level, format, os.Stderr)
	return nil
}

// callerID resolves the identity all debate operations run as.
func callerID() string {
	if rootFlags.caller != "" {
		return rootFlags.caller
	}
	if env := os.Getenv("AGORA_CALLER"); env != "" {
		return env
	}
	return "local"
}

// openService wires the service over the configured store and the built-in
// simulated experts. The returned cleanup closes the store.
func openService() (*service.Service, func(), error) {
	cfg, err := loadConfig(rootFlags.configPath)
	if err != nil {
		return nil, nil, err
	}

	dbPath := rootFlags.dbPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	experts := panel.Default()
	if cfg.PanelPath != "" {
		experts, err = panel.Load(cfg.PanelPath)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("load panel: %w", err)
		}
	}

	svc := service.New(st, agent.NewStub(nil), service.Options{
		Panel:   experts,
		Pricing: cfg.Pricing,
		Runner: orchestrate.RunnerConfig{
			Thresholds: cfg.Thresholds,
			Retry:      agent.DefaultRetryConfig(),
		},
	})
	return svc, func() { st.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
