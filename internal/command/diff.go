// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowsync/internal/config"
	"github.com/tfctl/rowsync/internal/differ"
	"github.com/tfctl/rowsync/internal/document"
	"github.com/tfctl/rowsync/internal/meta"
	"github.com/tfctl/rowsync/internal/output"
	"github.com/tfctl/rowsync/internal/surface"
)

// diffCommandAction is the action handler for the "diff" subcommand. It
// loads two documents and prints the edit script between them, the raw
// structural delta (--delta) or the calls a list surface would receive
// (--journal).
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}

	config.SetNamespace("diff")

	srcs, err := needArgs(cmd, 2, "OLD and NEW documents")
	if err != nil {
		return err
	}
	if len(srcs) > 2 {
		return fmt.Errorf("diff: expected OLD and NEW documents, got %d", len(srcs))
	}

	docs, err := loadDocuments(ctx, cmd, srcs)
	if err != nil {
		return err
	}
	old, new := docs[0], docs[1]
	w := writer(cmd)

	if cmd.Bool("delta") {
		changed, err := differ.Delta(w, old.Raw, new.Raw, nil)
		if err == nil && !changed {
			fmt.Fprintln(w, "no changes")
		}
		return err
	}

	if cmd.Bool("journal") {
		return journalDocuments(w, docs, cmd)
	}

	opts, err := diffOptions(cmd)
	if err != nil {
		return err
	}
	script := differ.Diff(old.Snapshot(), new.Snapshot(), opts)
	log.Debugf("script: %+v", script.Counts())

	raw, err := output.MarshalEntries(output.Entries(old, new, script))
	if err != nil {
		return err
	}

	if cmd.Bool("titles") {
		cmd.Metadata["header"] = output.Header(old, new)
		cmd.Metadata["footer"] = output.Summary(script)
	}

	var postProcess []func([]map[string]interface{}) error
	if cmd.Bool("chop") {
		postProcess = append(postProcess, func(dataset []map[string]interface{}) error {
			chopPrefix(dataset, "key")
			return nil
		})
	}

	return output.SliceDiceSpit(raw, output.ScriptAttrs(), cmd, w, postProcess...)
}

// journalDocuments plays docs through a Journal surface, printing every call
// it receives and the final list.
func journalDocuments(w io.Writer, docs []*document.Document, cmd *cli.Command) error {
	anim, err := animation(cmd)
	if err != nil {
		return err
	}

	j := surface.NewJournal(w, surface.WithVisible(cmd.Int("visible")))
	frames, err := playFrames(j, docs, anim, cmd)
	if err != nil {
		return err
	}

	for i, f := range frames {
		fmt.Fprintf(w, "# %d/%d %s\n", i+1, len(frames), f.Name)
		f.Apply(nil)
	}
	fmt.Fprint(w, j.Render())

	if err := j.Err(); err != nil {
		return fmt.Errorf("surface rejected an update: %w", err)
	}
	return nil
}

// diffCommandBuilder constructs the cli.Command for "diff", wiring metadata,
// flags, and action/validator handlers.
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "edit script between two documents",
		UsageText: "rowsync diff OLD NEW [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append(append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "chop",
				Usage: "chop common dotted prefix from row keys",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "delta",
				Usage: "show the structural delta of the raw documents",
				Value: false,
			},
			&cli.BoolFlag{
				Name:    "journal",
				Aliases: []string{"j"},
				Usage:   "show the calls a list view would receive",
				Value:   false,
			},
			tldrFlag,
		}, NewDocumentFlags("diff", meta.Config.Source)...),
			NewSurfaceFlags("diff", meta.Config.Source)...),
			NewGlobalFlags("diff", meta.Config.Source)...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			// --delta and --journal each replace the script output.
			if cmd.Bool("delta") && cmd.Bool("journal") {
				return ctx, fmt.Errorf("--delta and --journal are mutually exclusive")
			}

			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: diffCommandAction,
	}
}
