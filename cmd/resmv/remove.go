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

// newRemoveCmd creates the remove command
func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete resources the target module no longer needs",
		Long: `Remove deletes resources defined in the target module that nothing
references: not the target's own code, not any protected module, and not
the ignore pattern. Deletions cascade until a full pass changes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading job file: %w", err)
			}
			if cfg.Remove == nil {
				return errors.Errorf("%s defines no remove job", configFile)
			}

			filter, err := cfg.Remove.TypeFilter()
			if err != nil {
				return errors.Errorf("deriving type filter: %w", err)
			}

			ignore, err := cfg.Remove.IgnoreRegexp()
			if err != nil {
				return errors.Errorf("compiling ignore pattern: %w", err)
			}

			rounds := cfg.Remove.MaxRounds
			if maxRounds > 0 {
				rounds = maxRounds
			}

			op, err := operation.NewRemove(operation.RemoveOptions{
				Target:        cfg.Remove.Target,
				Protected:     cfg.Remove.Protected,
				Filter:        filter,
				MaxRounds:     rounds,
				IgnorePattern: ignore,
				Reporter:      status.New(os.Stdout),
			})
			if err != nil {
				return errors.Errorf("configuring remove: %w", err)
			}

			if _, err := op.Run(ctx); err != nil {
				return errors.Errorf("running remove: %w", err)
			}
			return nil
		},
	}

	return cmd
}
