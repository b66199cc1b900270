// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import "strings"

// chopPrefix shortens the dotted string values of column by dropping the
// leading segments every row shares, replacing them with "..". At least two
// segments must be shared and at least two must remain.
func chopPrefix(dataset []map[string]interface{}, column string) {
	var (
		rows     []int
		segments [][]string
	)
	for i, row := range dataset {
		if s, ok := row[column].(string); ok && s != "" {
			rows = append(rows, i)
			segments = append(segments, strings.Split(s, "."))
		}
	}
	if len(rows) == 0 {
		return
	}

	shortest := len(segments[0])
	for _, segs := range segments {
		shortest = min(shortest, len(segs))
	}

	common := 0
	for common < shortest-2 {
		seg := segments[0][common]
		shared := true
		for _, segs := range segments[1:] {
			if segs[common] != seg {
				shared = false
				break
			}
		}
		if !shared {
			break
		}
		common++
	}
	if common < 2 {
		return
	}

	for i, row := range rows {
		dataset[row][column] = ".." + strings.Join(segments[i][common:], ".")
	}
}
