// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output turns edit scripts into entries and renders them as a text
// table, JSON or YAML after filtering and sorting.
package output
