package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/roster/internal/config"
	"github.com/pders01/roster/internal/debuglog"
	"github.com/pders01/roster/internal/presenter"
	"github.com/pders01/roster/internal/printer"
	"github.com/pders01/roster/internal/session"
	"github.com/pders01/roster/internal/users"
	"github.com/pders01/roster/internal/validation"
)

var (
	listSearch string
	listFormat string
	listStyle  string
	listWrap   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the directory once and print it",
	Long: `list fetches the user directory, applies an optional search term and
prints the result as rendered markdown, JSON, TOML or YAML. A failed fetch
reports the error message and exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := io.Writer(os.Stdout)
		if cmd != nil {
			out = cmd.OutOrStdout()
		}
		fmt.Fprintf(out, "roster %s\n", Version)
		fmt.Fprintln(out, "User directory browser")
		fmt.Fprintln(out, "github.com/pders01/roster")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/roster/config.toml",
	RunE: func(cmd *cobra.Command, _ []string) error {
		configFile, err := validation.NewPathValidator().File(validation.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", configFile)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only show users matching this term")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "markdown", "Output format: markdown, json, toml or yaml")
	listCmd.Flags().StringVar(&listStyle, "style", "auto", "Markdown style: auto, dark, light, notty or ascii")
	listCmd.Flags().IntVar(&listWrap, "wrap", 80, "Markdown word wrap width")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(listCmd, versionCmd, configCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	format, err := printer.ParseFormat(listFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := printer.New(cmd.OutOrStdout(), format,
		printer.WithStyle(listStyle),
		printer.WithWordWrap(listWrap),
	)
	s := session.New(users.NewFetcher(cfg), presenter.New(out, cfg.UI.RevealStagger))

	s.Refresh(ctx, session.TriggerInitial)
	if listSearch != "" && s.State() == session.StateRenderedSuccess {
		s.SetSearchTerm(listSearch)
	}

	return out.Flush()
}
