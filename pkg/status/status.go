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

// Package status renders human-readable progress for move/remove runs. Every
// call carries an explicit nesting depth, so callers control indentation
// directly instead of layering decorated loggers.
package status

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

const indentStep = 2 // spaces per nesting level

// 📣 Reporter writes user-facing progress text and mirrors it to zerolog
type Reporter struct {
	console io.Writer
	info    pterm.PrefixPrinter
	warn    pterm.PrefixPrinter
	done    pterm.PrefixPrinter
}

// New creates a reporter writing to the given console.
func New(console io.Writer) *Reporter {
	return &Reporter{
		console: console,
		info:    *pterm.Info.WithWriter(console),
		warn:    *pterm.Warning.WithWriter(console),
		done:    *pterm.Success.WithWriter(console),
	}
}

func indent(depth int) string {
	return strings.Repeat(" ", depth*indentStep)
}

// Headerf announces an operation.
func (r *Reporter) Headerf(ctx context.Context, depth int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.info.Println(indent(depth) + color.New(color.Bold).Sprint(msg))
	zerolog.Ctx(ctx).Info().Int("depth", depth).Msg(msg)
}

// Roundf reports progress of one fixed-point round.
func (r *Reporter) Roundf(ctx context.Context, depth int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.info.Println(indent(depth) + msg)
	zerolog.Ctx(ctx).Info().Int("depth", depth).Msg(msg)
}

// Resourcef reports one affected resource.
func (r *Reporter) Resourcef(ctx context.Context, depth int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.console, "%s%s %s\n", indent(depth),
		color.New(color.FgCyan).Sprint("•"), msg)
	zerolog.Ctx(ctx).Debug().Int("depth", depth).Msg(msg)
}

// Warningf reports a non-fatal condition, such as the round cap being hit.
func (r *Reporter) Warningf(ctx context.Context, depth int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.warn.Println(indent(depth) + msg)
	zerolog.Ctx(ctx).Warn().Int("depth", depth).Msg(msg)
}

// Summaryf reports the final totals of a run.
func (r *Reporter) Summaryf(ctx context.Context, depth int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.done.Println(indent(depth) + msg)
	zerolog.Ctx(ctx).Info().Int("depth", depth).Msg(msg)
}
