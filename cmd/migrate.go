/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package main provides the CLI commands for managing database migrations of
the memberhub schema. This includes commands for applying and rolling back migrations.
*/

package main

import (
	"database/sql"
	"fmt"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/cashrewards/memberhub"
	"github.com/cashrewards/memberhub/database"
)

const migrationSchema = "memberhub"

func migrateCommands(m *memberhubInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "run memberhub migrations",
	}

	cmd.AddCommand(migrateUpCommands(m))
	cmd.AddCommand(migrateDownCommands(m))

	return cmd
}

func migrationSource() migrate.EmbedFileSystemMigrationSource {
	return migrate.EmbedFileSystemMigrationSource{
		FileSystem: memberhub.SQLFiles,
		Root:       "sql",
	}
}

// connectForMigration opens the database and makes sure the schema holding
// both the tables and the migration record exists.
func connectForMigration(m *memberhubInstance) (*sql.DB, error) {
	db, err := database.ConnectDB(m.cnf.DataSource.Dns)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", migrationSchema)); err != nil {
		_ = db.Close()
		return nil, err
	}
	migrate.SetSchema(migrationSchema)
	return db, nil
}

func migrateUpCommands(m *memberhubInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use: "up",
		Run: func(cmd *cobra.Command, args []string) {
			db, err := connectForMigration(m)
			if err != nil {
				log.Printf("Error connecting to database: %v", err)
				return
			}
			defer db.Close()

			n, err := migrate.Exec(db, "postgres", migrationSource(), migrate.Up)
			if err != nil {
				log.Printf("Error migrating up: %v", err)
			} else {
				fmt.Printf("Applied %d migrations!\n", n)
			}
		},
	}

	return cmd
}

func migrateDownCommands(m *memberhubInstance) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use: "down",
		Run: func(cmd *cobra.Command, args []string) {
			db, err := connectForMigration(m)
			if err != nil {
				log.Printf("Error connecting to database: %v", err)
				return
			}
			defer db.Close()

			n, err := migrate.ExecMax(db, "postgres", migrationSource(), migrate.Down, steps)
			if err != nil {
				log.Printf("Error migrating down: %v", err)
			} else {
				fmt.Printf("Rolled back %d migrations!\n", n)
			}
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back, 0 rolls back all")

	return cmd
}
