// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snapshot defines the value a sectioned list is rendered from: an
// ordered set of section identifiers and, for each section, an ordered list
// of rows. Snapshots are built fresh for every data change and treated as
// immutable once handed to a reconciler.
package snapshot
