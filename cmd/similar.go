package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/recommend"
)

var similarCmd = &cobra.Command{
	Use:   "similar <job-id>",
	Short: "List the jobs most similar to a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.close(ctx)

		n, _ := cmd.Flags().GetInt("count")

		similar, err := e.recommender().SimilarJobs(ctx, args[0], n)
		if errors.Is(err, jobs.ErrNotFound) {
			e.logger.Fatal("job not found", zap.String("job_id", args[0]))
		}
		if err != nil {
			e.logger.Fatal("finding similar jobs", zap.Error(err))
		}

		for i, res := range similar {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %.3f  %s\n           %s\n", i+1, res.SimilarityScore, res.Job.Label(), res.Reasoning)
		}
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().IntP("count", "n", recommend.DefaultCount, "number of similar jobs")
}
