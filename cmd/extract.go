package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume>",
	Short: "Parse a résumé (txt, md, pdf or docx) and print the extracted profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.close(ctx)

		profile, err := e.extractor.ExtractFile(args[0])
		if err != nil {
			e.logger.Fatal("parsing resume", zap.String("path", args[0]), zap.Error(err))
		}

		e.logger.Info("resume parsed", zap.String("summary", profile.Summary()))

		if err := printJSON(cmd.OutOrStdout(), profile); err != nil {
			e.logger.Fatal("printing profile", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
