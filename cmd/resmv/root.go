// Copyright 2025 the resmv authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Flags
	configFile string
	debug      bool
	maxRounds  int
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".resmv.yaml", "job file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().IntVar(&maxRounds, "max-rounds", 0, "override the job file's round limit")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resmv",
		Short: "Dependency-aware bulk mover and remover for Android resources",
		Long: `resmv relocates or deletes Android resources across module trees without
breaking references. It repeatedly scans the affected modules, moves or
removes only the resources no remaining code depends on, and stops once
a full pass changes nothing.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRootFlags(cmd)
	cmd.AddCommand(newMoveCmd())
	cmd.AddCommand(newRemoveCmd())

	return cmd
}
