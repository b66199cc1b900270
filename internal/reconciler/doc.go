// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package reconciler keeps a list surface consistent with the latest
// snapshot of its data. Each Apply diffs the displayed snapshot against the
// new one and either reloads the surface, issues one batch of structural
// mutations, or, when nothing moved, refreshes only the visible rows whose
// content changed.
package reconciler
