package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/news"
)

func newCrawlCmd() *cobra.Command {
	var (
		maxPerSite   int
		sites        []string
		offset       int
		limitSites   int
		pathContains string
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl batch over the registered sites",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Config.ValidateForCrawl(); err != nil {
				return err
			}

			report, err := a.Orchestrator.Run(cmd.Context(), news.RunParams{
				MaxPerSite:   maxPerSite,
				Sites:        sites,
				Offset:       offset,
				LimitSites:   limitSites,
				PathContains: pathContains,
			})
			if err != nil {
				return fmt.Errorf("crawl batch: %w", err)
			}

			a.Logger.Info("crawl batch finished",
				zap.String("run_id", report.RunID),
				zap.Int("articles", report.ArticlesInserted),
				zap.Int("site_errors", len(report.PerSiteErrors)),
				zap.Strings("sites", report.SitesProcessed),
			)
			for _, se := range report.PerSiteErrors {
				a.Logger.Warn("site failed", zap.String("source", se.Source), zap.String("error", se.Error))
			}
			if report.NextOffset != nil {
				a.Logger.Info("more sites remain", zap.Int("next_offset", *report.NextOffset))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPerSite, "max-per-site", 0, "article cap per site (0 = configured default)")
	cmd.Flags().StringSliceVar(&sites, "sites", nil, "restrict to these source names")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many sites from the registry")
	cmd.Flags().IntVar(&limitSites, "limit-sites", 0, "process at most this many sites (0 = all)")
	cmd.Flags().StringVar(&pathContains, "path-contains", "", "only follow article URLs containing this substring")

	return cmd
}
