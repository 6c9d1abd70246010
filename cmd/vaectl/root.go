package main

import (
	"context"

	"github.com/diewo77/vae-dossiers/internal/config"
	"github.com/diewo77/vae-dossiers/internal/db"
	"github.com/diewo77/vae-dossiers/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is shared by the subcommands once the root command has connected.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var verbose bool

	root := &cobra.Command{
		Use:           "vaectl",
		Short:         "Administer VAE candidacies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			log, err := logging.New(level, "console")
			if err != nil {
				return err
			}
			conn, err := db.Connect(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			e.cfg, e.log, e.db = cfg, log, conn
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.db == nil {
				return nil
			}
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SQL and debug output")

	root.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newCandidacyCmd(e),
		newFeasibilityCmd(e),
	)
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.Migrate(e.db, e.cfg, e.log); err != nil {
				return err
			}
			success(cmd, "Schema up to date")
			return nil
		},
	}
}

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert reference data (departments, certifications, organisms)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.Seed(ctx(cmd), e.db, e.log); err != nil {
				return err
			}
			success(cmd, "Reference data seeded")
			return nil
		},
	}
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
