// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowsync/internal/attrs"
	"github.com/tfctl/rowsync/internal/differ"
	"github.com/tfctl/rowsync/internal/document"
	"github.com/tfctl/rowsync/internal/filters"
	"github.com/tfctl/rowsync/internal/log"
	"github.com/tfctl/rowsync/internal/meta"
	"github.com/tfctl/rowsync/internal/reconciler"
	"github.com/tfctl/rowsync/internal/surface"
)

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr rowsync <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "rowsync", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// newLoader builds a document loader from the document flags.
func newLoader(cmd *cli.Command) (*document.Loader, error) {
	format, err := document.ParseFormat(cmd.String("format"))
	if err != nil {
		return nil, err
	}
	where, err := filters.Parse(cmd.String("where"))
	if err != nil {
		return nil, err
	}

	return &document.Loader{
		Options: document.Options{
			Format:  format,
			Attrs:   BuildAttrs(cmd, attrs.KeyName, attrs.TextName),
			Filters: where,
		},
		Profile:  cmd.String("profile"),
		Region:   cmd.String("region"),
		Endpoint: cmd.String("endpoint"),
		Cache:    cmd.Bool("cache"),
		Stdin:    cmd.Root().Reader,
	}, nil
}

// loadDocuments reads every source named on the command line.
func loadDocuments(ctx context.Context, cmd *cli.Command, srcs []string) ([]*document.Document, error) {
	loader, err := newLoader(cmd)
	if err != nil {
		return nil, err
	}

	docs, err := loader.LoadAll(ctx, srcs)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		log.Debugf("loaded %s: sections=%d rows=%d", d.Source, len(d.Sections), d.RowCount())
	}
	return docs, nil
}

// diffOptions maps the document flags onto differ options.
func diffOptions(cmd *cli.Command) (differ.Options[document.Row], error) {
	engine, err := differ.ParseEngine(cmd.String("engine"))
	if err != nil {
		return differ.Options[document.Row]{}, err
	}

	opts := differ.Options[document.Row]{
		Engine:  engine,
		Timeout: time.Duration(cmd.Int("timeout")) * time.Millisecond,
	}
	if cmd.Bool("strict_reloads") {
		opts.SameSlot = document.SameKey
	}
	return opts, nil
}

// animation maps the surface flags onto a reconciler animation.
func animation(cmd *cli.Command) (reconciler.Animation, error) {
	mode, err := reconciler.ParseMode(cmd.String("animation"))
	if err != nil {
		return reconciler.Animation{}, err
	}
	ts, err := parseTransitions(cmd.String("transitions"))
	if err != nil {
		return reconciler.Animation{}, err
	}

	switch mode {
	case reconciler.ModeSections:
		return reconciler.AnimateSections(ts[0]), nil
	case reconciler.ModeRows:
		return reconciler.AnimateRows(ts[0], ts[1], ts[2]), nil
	default:
		return reconciler.AnimateNone(), nil
	}
}

// playFrames returns one frame per document. The first frame always reloads
// without animation; the rest use anim. Section titles come from the
// document being applied.
func playFrames(s reconciler.Surface[*surface.Cell], docs []*document.Document, anim reconciler.Animation, cmd *cli.Command) ([]surface.Frame, error) {
	dopts, err := diffOptions(cmd)
	if err != nil {
		return nil, err
	}

	var current *document.Document
	opts := []reconciler.Option[string, document.Row]{
		reconciler.WithDiffOptions[string, document.Row](dopts),
	}
	if cmd.Bool("moves") {
		opts = append(opts, reconciler.WithMoveUpdates[string, document.Row]())
	}
	r := surface.NewRowReconciler(s, func(id string) (string, bool) {
		if current == nil {
			return "", false
		}
		return current.Title(id)
	}, opts...)

	frames := make([]surface.Frame, len(docs))
	for i, d := range docs {
		a := anim
		if i == 0 {
			a = reconciler.AnimateNone()
		}
		frames[i] = surface.Frame{
			Name: d.Source,
			Apply: func(completion func(bool)) {
				current = d
				r.Apply(d.Snapshot(), a, completion)
			},
		}
	}
	return frames, nil
}

// writer is where command output goes.
func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func needArgs(cmd *cli.Command, n int, what string) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < n {
		return nil, fmt.Errorf("%s: expected %s", cmd.Name, what)
	}
	return args, nil
}
