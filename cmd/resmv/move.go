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

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/config"
	"github.com/resmv/resmv/pkg/operation"
	"github.com/resmv/resmv/pkg/status"
)

// newMoveCmd creates the move command
func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Relocate resources from a source module into destination modules",
		Long: `Move gives away resources from the source module. A resource moves to a
destination only when that destination references it, no other destination
does, and neither the source nor a protected module still needs it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading job file: %w", err)
			}
			if cfg.Move == nil {
				return errors.Errorf("%s defines no move job", configFile)
			}

			filter, err := cfg.Move.TypeFilter()
			if err != nil {
				return errors.Errorf("deriving type filter: %w", err)
			}

			rounds := cfg.Move.MaxRounds
			if maxRounds > 0 {
				rounds = maxRounds
			}

			op, err := operation.NewMove(operation.MoveOptions{
				Source:       cfg.Move.Source,
				Destinations: cfg.Move.Destinations,
				Protected:    cfg.Move.Protected,
				Filter:       filter,
				MaxRounds:    rounds,
				Reporter:     status.New(os.Stdout),
			})
			if err != nil {
				return errors.Errorf("configuring move: %w", err)
			}

			if _, err := op.Run(ctx); err != nil {
				return errors.Errorf("running move: %w", err)
			}
			return nil
		},
	}

	return cmd
}
