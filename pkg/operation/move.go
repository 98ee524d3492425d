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

// Run executes move rounds until a round relocates nothing or the round cap
// is hit, and returns the total number of relocated resources. Relocating a
// container unit can expose resources it itself references, which is only
// visible after a fresh scan of the mutated tree; hence the iteration.
func (op *Move) Run(ctx context.Context) (int, error) {
	r := op.opts.Reporter
	r.Headerf(ctx, 0, "moving resources out of %s", op.opts.Source)

	total := 0
	for round := 1; ; round++ {
		if round > op.opts.MaxRounds {
			r.Warningf(ctx, 1, "round limit (%d) reached before convergence, %d resources moved so far",
				op.opts.MaxRounds, total)
			break
		}
		moved, err := op.runRound(ctx, round)
		if err != nil {
			return total, errors.Errorf("move round %d: %w", round, err)
		}
		r.Roundf(ctx, 1, "round %d: %d moved", round, moved)
		total += moved
		if moved == 0 {
			break
		}
	}

	r.Summaryf(ctx, 0, "moved %d resources", total)
	return total, nil
}

// runRound recomputes every dependency set from the current on-disk state,
// decides the per-destination candidate sets, and applies them.
func (op *Move) runRound(ctx context.Context, round int) (int, error) {
	src, err := module.Resolve(ctx, op.opts.Source)
	if err != nil {
		return 0, err
	}
	protected, err := module.ResolveAll(ctx, op.opts.Protected)
	if err != nil {
		return 0, err
	}
	dests, err := module.ResolveAll(ctx, op.opts.Destinations)
	if err != nil {
		return 0, err
	}

	// Anything the source or a protected consumer still references must stay.
	blocked := dependency.NewSet()
	blocked.Merge(src.Deps)
	for _, p := range protected {
		blocked.Merge(p.Deps)
	}

	defined, err := module.ListDefined(ctx, op.opts.Source, op.opts.Filter)
	if err != nil {
		return 0, err
	}

	moved := 0
	for j, dest := range dests {
		// A resource wanted by two or more destinations moves to none of
		// them; the ambiguity may resolve in a later round.
		candidate := dest.Deps.Diff(blocked)
		for k, other := range dests {
			if k != j {
				candidate = candidate.Diff(other.Deps)
			}
		}
		if candidate.Len() == 0 {
			continue
		}
		n, err := op.applyCandidates(ctx, candidate, defined, dest.Root)
		if err != nil {
			return 0, err
		}
		moved += n
	}
	return moved, nil
}

// applyCandidates relocates every source definition named by the candidate
// set into the destination, standalone files whole and container units by
// document surgery, preserving the res-relative layout.
func (op *Move) applyCandidates(ctx context.Context, candidate dependency.Set, defined []module.Defined, destRoot string) (int, error) {
	r := op.opts.Reporter

	moved := 0
	containerNames := map[string]dependency.Set{}
	for _, d := range defined {
		if !candidate.Contains(d.Dependency()) {
			continue
		}
		if !d.Standalone {
			names, ok := containerNames[d.Path]
			if !ok {
				names = dependency.NewSet()
				containerNames[d.Path] = names
			}
			names.Add(d.Dependency())
			continue
		}
		toPath, err := relocatedPath(op.opts.Source, destRoot, d.Path)
		if err != nil {
			return 0, err
		}
		ok, err := op.editor.MoveStandalone(ctx, d.Path, toPath)
		if err != nil {
			return 0, err
		}
		if ok {
			r.Resourcef(ctx, 2, "%s -> %s", d.Dependency(), destRoot)
			moved++
		}
	}

	// Keep file order deterministic.
	for _, d := range defined {
		names, ok := containerNames[d.Path]
		if !ok {
			continue
		}
		delete(containerNames, d.Path)
		toFile, err := relocatedPath(op.opts.Source, destRoot, d.Path)
		if err != nil {
			return 0, err
		}
		n, err := op.editor.ApplyMove(ctx, d.Path, toFile, names, op.opts.Filter)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			r.Resourcef(ctx, 2, "%d units of %s -> %s", n, d.Path, destRoot)
			moved += n
		}
	}
	return moved, nil
}
