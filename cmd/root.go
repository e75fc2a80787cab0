// Package cmd defines the CLI commands for the newscrawler executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlaswire/newscrawler/internal/app"
	"github.com/atlaswire/newscrawler/internal/config"
)

var cfgFile string

type appKeyType struct{}

var appKey appKeyType

// newApp is the application factory, a variable so tests can swap it.
var newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newscrawler",
		Short: "Crawls Moroccan financial news sites and extracts articles",
		Long: `newscrawler discovers article links on the registered listing pages,
fetches each article with retry and anti-bot fallback, extracts the
editorial body through a layered pipeline and persists the result.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newRescrapeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return a, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
