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

package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/dependency"
	"github.com/resmv/resmv/pkg/module"
)

// Run executes remove rounds until a round deletes nothing or the round cap
// is hit, and returns the total number of deleted resources. Deleting a unit
// can orphan resources only it referenced, so the loop iterates to a
// fixpoint like move does.
func (op *Remove) Run(ctx context.Context) (int, error) {
	r := op.opts.Reporter
	r.Headerf(ctx, 0, "removing unused resources from %s", op.opts.Target)

	total := 0
	for round := 1; ; round++ {
		if round > op.opts.MaxRounds {
			r.Warningf(ctx, 1, "round limit (%d) reached before convergence, %d resources removed so far",
				op.opts.MaxRounds, total)
			break
		}
		removed, err := op.runRound(ctx, round)
		if err != nil {
			return total, errors.Errorf("remove round %d: %w", round, err)
		}
		r.Roundf(ctx, 1, "round %d: %d removed", round, removed)
		total += removed
		if removed == 0 {
			break
		}
	}

	r.Summaryf(ctx, 0, "removed %d resources", total)
	return total, nil
}

func (op *Remove) runRound(ctx context.Context, round int) (int, error) {
	r := op.opts.Reporter

	target, err := module.Resolve(ctx, op.opts.Target)
	if err != nil {
		return 0, err
	}
	protected, err := module.ResolveAll(ctx, op.opts.Protected)
	if err != nil {
		return 0, err
	}

	keep := dependency.NewSet()
	keep.Merge(target.Deps)
	for _, p := range protected {
		keep.Merge(p.Deps)
	}

	defined, err := module.ListDefined(ctx, op.opts.Target, op.opts.Filter)
	if err != nil {
		return 0, err
	}

	removed := 0
	containerFiles := map[string]bool{}
	for _, d := range defined {
		if !d.Standalone {
			containerFiles[d.Path] = true
			continue
		}
		if keep.Contains(d.Dependency()) {
			continue
		}
		if op.opts.IgnorePattern != nil && op.opts.IgnorePattern.MatchString(d.Name) {
			continue
		}
		if err := op.editor.RemoveStandalone(ctx, d.Path); err != nil {
			return 0, err
		}
		r.Resourcef(ctx, 2, "removed %s (%s)", d.Dependency(), d.Path)
		removed++
	}

	for _, d := range defined {
		if !containerFiles[d.Path] {
			continue
		}
		containerFiles[d.Path] = false
		n, err := op.editor.ApplyRemove(ctx, d.Path, keep, op.opts.Filter, op.opts.IgnorePattern)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			r.Resourcef(ctx, 2, "removed %d units from %s", n, d.Path)
			removed += n
		}
	}
	return removed, nil
}
