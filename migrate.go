package main

import (
	"context"
	"errors"

	"github.com/meinhoongagan/smart-clinic/db"
	"github.com/meinhoongagan/smart-clinic/docstore"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create relational tables and document indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.IsDev(), log)
			if err != nil {
				return err
			}
			defer db.Close(gdb)
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			log.Info().Msg("relational schema migrated")

			client, mdb, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())
			if err := docstore.EnsureIndexes(ctx, mdb); err != nil {
				return err
			}
			log.Info().Str("database", cfg.MongoDatabase).Msg("document indexes ensured")
			return nil
		},
	}
}
