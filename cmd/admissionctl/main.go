// Command admissionctl runs operator tasks against the admission database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/config"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/repositories/postgres"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/validator"
	"github.com/ksys/admission-service/pkg"
)

var (
	verbose bool
	logger  *slog.Logger

	// openDatabase is replaced in tests
	openDatabase = func(cfg *config.Config) (*gorm.DB, error) {
		cfg.Database.AutoMigrate = false
		return pkg.InitDatabase(cfg)
	}
)

var rootCmd = &cobra.Command{
	Use:   "admissionctl",
	Short: "Operator tooling for the admission service",
	Long: `admissionctl runs maintenance tasks directly against the admission database.

Available commands:
  migrate     - Create or update the database schema
  grant-admin - Add a principal to the admin roster
  export      - Write the candidate roster to an XLSX file`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	grantAdminCmd.Flags().BoolVar(&grantSuper, "super", false, "Make the principal super admin when none exists")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "candidates.xlsx", "Output file")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Only export candidates in this status")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "Only export candidates matching name, mobile or admission ID")

	rootCmd.AddCommand(migrateCmd, grantAdminCmd, exportCmd)
}

// env bundles what every command needs
type env struct {
	db       *gorm.DB
	repo     repositories.Repository
	services services.ServiceManager
}

func newEnv(cmd *cobra.Command) (*env, error) {
	db, err := openDatabase(config.Load())
	if err != nil {
		return nil, err
	}

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:    db,
		Cache: cache.NewCacheManager(nil, 0),
	})

	sm := services.NewServiceManager(db, repo, logger, validator.New(), nil, services.ServiceManagerConfig{})
	if err := sm.Initialize(cmd.Context()); err != nil {
		return nil, err
	}

	return &env{db: db, repo: repo, services: sm}, nil
}

func (e *env) close() {
	if err := e.repo.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
