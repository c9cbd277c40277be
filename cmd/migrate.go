package cmd

import (
	"log"

	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/database/dbcore"
	"github.com/spf13/cobra"
)

// migrateCmd applies the database schema without starting the server.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()

		db, err := dbcore.Open(config.Get())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbcore.Close(db)

		if err := dbcore.AutoMigrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
