// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"sort"
)

// IndexPath identifies a single row by section index and row index.
type IndexPath struct {
	Section int `json:"section" yaml:"section"`
	Row     int `json:"row" yaml:"row"`
}

// At is shorthand for IndexPath{Section: section, Row: row}.
func At(section, row int) IndexPath {
	return IndexPath{Section: section, Row: row}
}

func (p IndexPath) String() string {
	return fmt.Sprintf("%d.%d", p.Section, p.Row)
}

// Less orders index paths by section, then row.
func (p IndexPath) Less(other IndexPath) bool {
	if p.Section != other.Section {
		return p.Section < other.Section
	}
	return p.Row < other.Row
}

// SortIndexPaths sorts paths in place in (section, row) order.
func SortIndexPaths(paths []IndexPath) {
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Less(paths[j])
	})
}
