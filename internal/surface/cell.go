// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"github.com/tfctl/rowsync/internal/document"
	"github.com/tfctl/rowsync/internal/reconciler"
	"github.com/tfctl/rowsync/internal/snapshot"
)

// Cell is the on-screen cell both surfaces hand out.
type Cell struct {
	Key  string
	Text string

	// Configured counts configure calls, which lets callers see which cells
	// were touched by a reload.
	Configured int
}

// DequeueRow hands out a fresh cell for a document row.
func DequeueRow(_ reconciler.Surface[*Cell], _ snapshot.IndexPath, _ string, _ document.Row) *Cell {
	return &Cell{}
}

// ConfigureRow fills a cell from a document row.
func ConfigureRow(c *Cell, _ snapshot.IndexPath, _ string, row document.Row) {
	c.Key = row.Key
	c.Text = row.Text
	c.Configured++
}

// NewRowReconciler wires a reconciler for documents to s. Section headers
// come from titles.
func NewRowReconciler(s reconciler.Surface[*Cell], titles func(id string) (string, bool), opts ...reconciler.Option[string, document.Row]) *reconciler.Reconciler[string, document.Row, *Cell] {
	if titles != nil {
		opts = append([]reconciler.Option[string, document.Row]{reconciler.WithHeaderTitle[string, document.Row](titles)}, opts...)
	}
	return reconciler.New[string, document.Row, *Cell](s, DequeueRow, ConfigureRow, opts...)
}
