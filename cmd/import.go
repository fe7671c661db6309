package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
)

var importCmd = &cobra.Command{
	Use:   "import <scraped.json>...",
	Short: "Load scraper output into the configured job store",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.close(ctx)

		if ensure, _ := cmd.Flags().GetBool("ensure-indexes"); ensure {
			mongo, ok := e.store.(*jobs.MongoStore)
			if !ok {
				e.logger.Warn("ignoring --ensure-indexes", zap.String("reason", "store is not mongo"))
			} else if err := mongo.EnsureIndexes(ctx); err != nil {
				e.logger.Fatal("creating indexes", zap.Error(err))
			}
		}

		total := 0
		for _, path := range args {
			items, err := jobs.ReadFile(path)
			if err != nil {
				e.logger.Fatal("reading scraped jobs", zap.String("path", path), zap.Error(err))
			}

			added, err := e.store.Save(ctx, items)
			if err != nil {
				e.logger.Fatal("saving jobs", zap.String("path", path), zap.Error(err))
			}

			e.logger.Info("imported jobs",
				zap.String("path", path),
				zap.Int("read", len(items)),
				zap.Int("added", added),
			)
			total += added
		}

		e.logger.Info("import finished", zap.Int("added", total))
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("ensure-indexes", false, "create the mongo indexes before importing")
}
