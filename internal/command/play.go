// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/tfctl/rowsync/internal/config"
	"github.com/tfctl/rowsync/internal/meta"
	"github.com/tfctl/rowsync/internal/surface"
)

// playCommandAction is the action handler for the "play" subcommand. It steps
// a list view through each document in turn. On a terminal the list is drawn
// live; otherwise, or with --journal, the surface calls are printed.
func playCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "play") {
		return nil
	}

	config.SetNamespace("play")

	srcs, err := needArgs(cmd, 1, "at least one document")
	if err != nil {
		return err
	}

	docs, err := loadDocuments(ctx, cmd, srcs)
	if err != nil {
		return err
	}

	w := writer(cmd)
	if cmd.Bool("journal") || !isTerminal(w) {
		return journalDocuments(w, docs, cmd)
	}

	anim, err := animation(cmd)
	if err != nil {
		return err
	}

	t := surface.NewTerminal(cmd.Int("visible"))
	frames, err := playFrames(t, docs, anim, cmd)
	if err != nil {
		return err
	}

	interval := time.Duration(cmd.Int("interval")) * time.Millisecond
	flash := time.Duration(cmd.Int("flash")) * time.Millisecond
	log.Debugf("playing %d frames: interval=%s flash=%s", len(frames), interval, flash)

	return surface.Run(surface.NewModel(t, frames, interval, flash),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(w),
	)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// playCommandBuilder constructs the cli.Command for "play", wiring metadata,
// flags, and action/validator handlers.
func playCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "step a list view through documents",
		UsageText: "rowsync play DOC... [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			&cli.IntFlag{
				Name:    "flash",
				Usage:   "milliseconds a batch stays highlighted",
				Value:   600,
				Sources: cli.NewValueSourceChain(configSources("play", "flash", meta.Config.Source)...),
			},
			&cli.IntFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "milliseconds between documents",
				Value:   1500,
				Sources: cli.NewValueSourceChain(configSources("play", "interval", meta.Config.Source)...),
			},
			&cli.BoolFlag{
				Name:    "journal",
				Aliases: []string{"j"},
				Usage:   "print surface calls instead of drawing",
				Value:   false,
			},
			tldrFlag,
		}, NewDocumentFlags("play", meta.Config.Source)...),
			NewSurfaceFlags("play", meta.Config.Source)...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: playCommandAction,
	}
}
