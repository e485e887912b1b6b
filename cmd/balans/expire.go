package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/balanshq/balans/pkg/commitments"
	"github.com/balanshq/balans/pkg/flags"
	"github.com/balanshq/balans/pkg/flags/configflags"
)

func init() {
	dbFlags := flags.NewPostgresDatabaseFlags()
	configFlags := configflags.NewConfigFlags()

	cmd := &cobra.Command{
		Use:   "expire-commitments",
		Short: "Marks stale active commitments as expired.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := configFlags.GetConfig()
			if err != nil {
				return errors.WithMessage(err, "couldn't load config")
			}

			dbc, err := dbFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get DB client")
			}

			store := commitments.New(dbc,
				config.Coaching.FollowUpDays,
				config.Coaching.FollowUpDeferDays)

			expired, err := store.ExpireOlderThan(context.Background(),
				config.Coaching.ExpireAfterDays)
			if err != nil {
				return errors.WithMessage(err, "could not expire commitments")
			}

			log.WithField("expired", expired).Info("commitment expiry sweep complete")
			return nil
		},
	}

	dbFlags.BindFlags(cmd.Flags())
	configFlags.BindFlags(cmd.Flags())

	rootCmd.AddCommand(cmd)
}
