package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/news"
)

func newRescrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rescrape [url ...]",
		Short: "Re-extracts specific article URLs, replacing the stored rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Config.ValidateForCrawl(); err != nil {
				return err
			}

			report, err := a.Orchestrator.Run(cmd.Context(), news.RunParams{RescrapeURLs: args})
			if err != nil {
				return fmt.Errorf("rescrape batch: %w", err)
			}

			a.Logger.Info("rescrape finished",
				zap.String("run_id", report.RunID),
				zap.Int("articles", report.ArticlesInserted),
				zap.Int("errors", len(report.PerSiteErrors)),
			)
			for _, se := range report.PerSiteErrors {
				a.Logger.Warn("url failed", zap.String("url", se.Source), zap.String("error", se.Error))
			}
			return nil
		},
	}
	return cmd
}
