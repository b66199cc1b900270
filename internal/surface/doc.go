// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package surface provides the two list views rowsync drives.
//
// Journal prints every mutation it receives and completes batches at once.
// Terminal renders the list in a bubbletea program and keeps each batch in
// flight, highlighted, until it settles.
//
// Both keep a mirror of the displayed list that applies batches the way a
// table view does and refuses any batch whose resulting row counts disagree
// with the data source. A refused batch is followed by a full reload.
package surface
