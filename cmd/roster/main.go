package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/roster/internal/config"
	"github.com/pders01/roster/internal/debuglog"
	"github.com/pders01/roster/internal/tui"
	"github.com/pders01/roster/internal/users"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath   string
	endpointURL  string
	allowPrivate bool
	logLevel     string
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Browse a remote user directory in the terminal",
	Long: `roster fetches the user directory from a JSON endpoint and shows it as a
searchable list of cards. Press / to search, r to refresh, ctrl+l to clear.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&endpointURL, "endpoint", "e", "", "Users endpoint URL (overrides config)")
	flags.BoolVar(&allowPrivate, "allow-private", false, "Allow localhost and private network endpoints")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error or off (overrides config)")

	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies the command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if allowPrivate {
		cfg.Endpoint.AllowPrivate = true
	}
	if endpointURL != "" {
		cfg.Endpoint.URL = endpointURL
		if err := cfg.ValidateEndpoint(); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(Version)
	}

	app := tui.NewApp(cfg, users.NewFetcher(cfg))
	defer app.Shutdown()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
