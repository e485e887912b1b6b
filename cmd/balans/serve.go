package main

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/balanshq/balans/pkg/balansserver"
	"github.com/balanshq/balans/pkg/coaching"
	"github.com/balanshq/balans/pkg/commitments"
	"github.com/balanshq/balans/pkg/conversations"
	"github.com/balanshq/balans/pkg/flags"
	"github.com/balanshq/balans/pkg/flags/configflags"
	"github.com/balanshq/balans/pkg/profile"
	"github.com/balanshq/balans/pkg/quota"
)

type ServerFlags struct {
	AIFlags     *flags.AIFlags
	CacheFlags  *flags.CacheFlags
	ConfigFlags *configflags.ConfigFlags
	DBFlags     *flags.PostgresFlags

	ListenAddr  string
	MetricsAddr string
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		AIFlags:     flags.NewAIFlags(),
		CacheFlags:  flags.NewCacheFlags(),
		ConfigFlags: configflags.NewConfigFlags(),
		DBFlags:     flags.NewPostgresDatabaseFlags(),
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.AIFlags.BindFlags(flagSet)
	f.CacheFlags.BindFlags(flagSet)
	f.ConfigFlags.BindFlags(flagSet)
	f.DBFlags.BindFlags(flagSet)

	flagSet.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "The address to serve the coaching API on (default :8080)")
	flagSet.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on (default :2112)")
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the balans server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := f.ConfigFlags.GetConfig()
			if err != nil {
				return errors.WithMessage(err, "couldn't load config")
			}

			dbc, err := f.DBFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get DB client")
			}

			cacheClient, err := f.CacheFlags.GetCacheClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get cache client")
			}
			if cacheClient == nil {
				log.Info("no redis-url provided, profile summaries will not be cached")
			}

			llmClient := f.AIFlags.GetLLMClient()

			conversationStore := conversations.New(dbc)
			commitmentStore := commitments.New(dbc,
				config.Coaching.FollowUpDays,
				config.Coaching.FollowUpDeferDays)
			quotaTracker := quota.New(dbc, config.Coaching.DailyExchangeLimit)
			profileProvider := profile.New(dbc, cacheClient)

			orchestrator := coaching.NewOrchestrator(
				conversationStore,
				commitmentStore,
				quotaTracker,
				profileProvider,
				llmClient,
			)

			server := balansserver.NewServer(
				f.ListenAddr,
				orchestrator,
				conversationStore,
				commitmentStore,
				profileProvider,
				config,
			)

			if f.MetricsAddr != "" {
				// Serve our metrics endpoint for prometheus to scrape
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					err := http.ListenAndServe(f.MetricsAddr, nil) //nolint
					if err != nil {
						panic(err)
					}
				}()
			}

			server.Serve()
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
