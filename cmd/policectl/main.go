package main

import (
	"fmt"
	"os"

	"police_flow_app_go/config"
	"police_flow_app_go/db"
	"police_flow_app_go/models"

	"github.com/spf13/cobra"
)

var rootFlags struct {
	dbPath string
}

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "policectl",
	Short: "Operator tooling for the police case workflow",
	Long:  "policectl runs migrations, provisions users and roles, and triggers maintenance\nand reports against the case database.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cfg = config.Load()
		config.InitLogger(cfg.Environment)
		if rootFlags.dbPath != "" {
			cfg.DBPath = rootFlags.dbPath
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		db.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.dbPath, "db", "", "sqlite database path (defaults to DB_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sweepOverdueCmd)
	rootCmd.AddCommand(mostWantedCmd)
}

// openDatabase connects to the configured database and brings the schema up to date
func openDatabase() error {
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		return err
	}
	return db.AutoMigrate(models.All()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
