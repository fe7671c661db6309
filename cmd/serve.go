package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching engine over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := setup(ctx)
		defer e.close(context.Background())

		opts := []api.Option{api.WithLogger(e.logger), api.WithFilters(e.filters)}
		if e.config.AI.Enabled {
			matcher, err := newAIMatcher(ctx, e.config.AI, e.logger)
			if err != nil {
				e.logger.Warn("serving without AI second opinion", zap.Error(err))
			} else {
				opts = append(opts, api.WithMatcher(matcher))
			}
		}

		server := api.NewServer(e.pool, e.scorer, e.extractor, opts...)
		if err := server.ListenAndServe(ctx, e.config.Server.Addr); err != nil {
			e.logger.Fatal("http server", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default server.addr or :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
