// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowsync/internal/differ"
	"github.com/tfctl/rowsync/internal/document"
	"github.com/tfctl/rowsync/internal/filters"
	"github.com/tfctl/rowsync/internal/output"
	"github.com/tfctl/rowsync/internal/reconciler"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator checks flag combinations that single flag validators
// can't see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if _, err := filters.Parse(c.String("where")); err != nil {
		return fmt.Errorf("--where: %w", err)
	}
	if c.Int("visible") < 0 {
		return fmt.Errorf("--visible must not be negative")
	}
	return nil
}

func OutputValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(output.Formats, s) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func EngineValidator(value any) error {
	s, _ := value.(string)
	_, err := differ.ParseEngine(s)
	return err
}

func FormatValidator(value any) error {
	s, _ := value.(string)
	_, err := document.ParseFormat(s)
	return err
}

func AnimationValidator(value any) error {
	s, _ := value.(string)
	_, err := reconciler.ParseMode(s)
	return err
}

// TransitionsValidator accepts one to three comma separated transition names.
func TransitionsValidator(value any) error {
	s, _ := value.(string)
	_, err := parseTransitions(s)
	return err
}

// parseTransitions reads "reload[,insert[,delete]]". Missing entries repeat
// the last one given.
func parseTransitions(spec string) ([3]reconciler.Transition, error) {
	var out [3]reconciler.Transition
	names := strings.Split(spec, ",")
	if len(names) > len(out) {
		return out, fmt.Errorf("at most %d transitions, got %d", len(out), len(names))
	}
	for i := range out {
		name := names[min(i, len(names)-1)]
		t, err := reconciler.ParseTransition(name)
		if err != nil {
			return out, err
		}
		out[i] = t
	}
	return out, nil
}
