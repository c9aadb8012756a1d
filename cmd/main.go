/*
Copyright 2024 Leadgrid Authors.

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

	"github.com/leadgrid/leadgrid"
	"github.com/leadgrid/leadgrid/config"
	"github.com/leadgrid/leadgrid/database"
	"github.com/leadgrid/leadgrid/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Leadgrid represents the CLI application, encapsulating the root Cobra command.
type Leadgrid struct {
	cmd *cobra.Command
}

// leadgridInstance holds the engine instance and its configuration, shared by
// all subcommands.
type leadgridInstance struct {
	service *leadgrid.Leadgrid
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before running
// any command.
func preRun(app *leadgridInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("leadgrid.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupLeadgrid(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf

		return nil
	}
}

// setupLeadgrid connects the datasource and builds the engine instance.
func setupLeadgrid(cfg *config.Configuration) (*leadgrid.Leadgrid, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	service, err := leadgrid.NewLeadgrid(db)
	if err != nil {
		return nil, fmt.Errorf("error creating leadgrid: %v", err)
	}
	return service, nil
}

// NewCLI creates the command-line interface for the leadgrid application.
func NewCLI() *Leadgrid {
	var configFile string
	b := &leadgridInstance{}

	var rootCmd = &cobra.Command{
		Use:   "leadgrid",
		Short: "Lead matching and fan-out engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./leadgrid.json", "Configuration file for leadgrid")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))
	rootCmd.AddCommand(configCommands())

	return &Leadgrid{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during
// execution.
func (w Leadgrid) executeCLI() {
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
