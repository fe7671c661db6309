package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [job-id]",
	Short: "Recommend similar jobs and, given a résumé, jobs that fit it better",
	Long: `Recommend similar jobs to a reference posting. With --resume the résumé is
scored against every posting and the ones scoring higher than the reference
are listed as better matches. Without a job id the reference is picked from a list.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.close(ctx)

		refID := ""
		if len(args) == 1 {
			refID = args[0]
		} else {
			selected, err := pickJob(ctx, e)
			if err != nil {
				e.logger.Fatal("choosing a reference job", zap.Error(err))
			}
			refID = selected
		}

		resumePath, _ := cmd.Flags().GetString("resume")

		recs, err := e.recommender().RecommendForProfile(ctx, refID, resumePath)
		if err != nil {
			e.logger.Fatal("recommending jobs", zap.String("job_id", refID), zap.Error(err))
		}

		e.logger.Info("recommendations ready",
			zap.String("job_id", refID),
			zap.Int("similar", len(recs.SimilarJobs)),
			zap.Int("better", len(recs.BetterMatches)),
		)

		if err := printJSON(cmd.OutOrStdout(), recs); err != nil {
			e.logger.Fatal("printing recommendations", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("resume", "r", "", "résumé file used to find better matches")
}

func pickJob(ctx context.Context, e *env) (string, error) {
	all, err := e.pool.All(ctx)
	if err != nil {
		return "", err
	}
	if all.Len() == 0 {
		return "", fmt.Errorf("no jobs available")
	}

	items := make([]string, 0, all.Len())
	for _, job := range all.Items {
		items = append(items, job.Label())
	}

	prompt := promptui.Select{
		Label:             "Choose a reference job and press ENTER",
		Items:             items,
		Size:              15,
		StartInSearchMode: true,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return all.Items[idx].ID, nil
}
