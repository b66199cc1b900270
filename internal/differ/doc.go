// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ computes the edit script between two snapshots of a sectioned
// list. Sections are matched by position. Rows within a retained section are
// aligned with a longest common subsequence (Myers or dynamic programming),
// after which delete/insert pairs of the same row become moves and
// delete/insert pairs at the same index become reloads.
//
// The package also renders structural deltas of snapshot documents.
package differ
