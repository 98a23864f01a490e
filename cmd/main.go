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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cashrewards/memberhub"
	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/database"
	"github.com/cashrewards/memberhub/internal/notification"
)

// MemberHub represents the CLI application, encapsulating the root Cobra command.
type MemberHub struct {
	cmd *cobra.Command
}

// memberhubInstance holds the service and the configuration it was built from.
type memberhubInstance struct {
	hub *memberhub.MemberHub
	cnf *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration file and builds the service before any command runs.
func preRun(app *memberhubInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		// migrate and config do not need a running service
		if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "migrate") {
			app.cnf = cnf
			return nil
		}

		hub, err := setupMemberHub(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.hub = hub
		app.cnf = cnf
		return nil
	}
}

// setupMemberHub connects to the data source and creates the withdrawal service.
func setupMemberHub(cfg *config.Configuration) (*memberhub.MemberHub, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	hub, err := memberhub.NewMemberHub(db)
	if err != nil {
		return nil, fmt.Errorf("error creating memberhub: %v", err)
	}
	return hub, nil
}

// NewCLI creates the command-line interface with the server, workers,
// migrate and config subcommands.
func NewCLI() *MemberHub {
	var configFile string
	m := &memberhubInstance{}

	var rootCmd = &cobra.Command{
		Use:   "memberhub",
		Short: "Cashback withdrawals across member memberships",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./memberhub.json", "Configuration file for memberhub")
	rootCmd.PersistentPreRunE = preRun(m, &configFile)

	rootCmd.AddCommand(serverCommands(m))
	rootCmd.AddCommand(workerCommands(m))
	rootCmd.AddCommand(migrateCommands(m))
	rootCmd.AddCommand(configCommands(m))

	return &MemberHub{cmd: rootCmd}
}

func (w MemberHub) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
