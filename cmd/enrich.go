package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookdex/internal/book"
	"bookdex/internal/clock"
	"bookdex/internal/config"
	"bookdex/internal/goodreads"
	"bookdex/internal/googlebooks"
	"bookdex/internal/logging"
	"bookdex/internal/metrics"
	"bookdex/internal/notion"
	"bookdex/internal/pipeline"
	"bookdex/internal/render"
)

const defaultConfigFile = "bookdex.yaml"

// newEnrichCmd creates and configures the 'enrich' subcommand.
func newEnrichCmd() *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Runs one enrichment batch",
		Long: `Queries the book database for rows with an ISBN but no title, resolves
metadata for each, and writes the merged records back. The given status is
stamped onto every record in the batch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnrich(cmd.Context(), statusFlag)
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "batch status: TBR, Reading, Finished, or DNF")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func runEnrich(ctx context.Context, statusFlag string) error {
	status, err := book.ParseStatus(statusFlag)
	if err != nil {
		return err
	}

	path := cfgFile
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()
	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.Info("serving metrics", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, metrics.Router()); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	driver := buildDriver(cfg, logger)
	if err := driver.Run(ctx, status); err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	logger.Info("enrich command finished")
	return nil
}

func buildDriver(cfg config.Config, logger *zap.Logger) *pipeline.Driver {
	store := notion.NewStore(
		notionapi.NewClient(notionapi.Token(cfg.Notion.Token)),
		notion.Config{
			BooksDatabaseID:  cfg.Notion.BooksDatabaseID,
			SeriesDatabaseID: cfg.Notion.SeriesDatabaseID,
			GenresDatabaseID: cfg.Notion.GenresDatabaseID,
		},
		clock.NewSystem(),
		logger,
	)

	fetcher := goodreads.NewFetcher(goodreads.FetcherConfig{
		UserAgent:         cfg.Scraper.UserAgent,
		Timeout:           cfg.ScrapeTimeout(),
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
	})

	renderer := render.NewChrome(render.ChromeConfig{
		UserAgent:         cfg.Scraper.UserAgent,
		NavigationTimeout: cfg.NavTimeout(),
		SettleDelay:       cfg.SettleDelay(),
	})

	resolver := pipeline.NewResolver(
		googlebooks.New(cfg.ScrapeTimeout()),
		fetcher,
		goodreads.NewShelfChecker(renderer, logger),
		logger,
	)

	return pipeline.NewDriver(resolver, store, logger)
}
