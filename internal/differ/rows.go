// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apex/log"
	"github.com/sergi/go-diff/diffmatchpatch"
	lcs "github.com/yudai/golcs"

	"github.com/tfctl/rowsync/internal/snapshot"
)

// Engine selects the algorithm used to align two row sequences.
type Engine string

const (
	// EngineMyers runs Myers' O(ND) diff over the rows.
	EngineMyers Engine = "myers"
	// EngineLCS runs a dynamic programming longest common subsequence. It is
	// quadratic in time and space and meant for small sections or as a
	// reference.
	EngineLCS Engine = "lcs"
)

// ParseEngine maps a name to an Engine. An empty name selects EngineMyers.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineMyers:
		return EngineMyers, nil
	case EngineLCS:
		return EngineLCS, nil
	default:
		return "", fmt.Errorf("unknown diff engine %q (want %s or %s)", name, EngineMyers, EngineLCS)
	}
}

// Options tune the row level diff. The zero value uses the Myers engine
// without a deadline and positional reload classification.
type Options[O comparable] struct {
	Engine Engine

	// Timeout bounds the Myers engine. When it expires the engine returns a
	// valid but possibly non-minimal script. Zero or negative means no limit.
	Timeout time.Duration

	// SameSlot, when set, restricts reload classification to positions where
	// the old and new rows are the same logical item. Other positions stay a
	// delete plus an insert.
	SameSlot func(old, new O) bool
}

type opKind int

const (
	opDelete opKind = iota
	opInsert
)

// rawOp is one step of an insert/delete script. index is into the old rows
// for deletes and into the new rows for inserts.
type rawOp struct {
	kind  opKind
	index int
	id    int
}

// DiffRows classifies the differences between two row sequences of the
// section at index section.
func DiffRows[O comparable](old, new []O, section int, opts Options[O]) Rows {
	oldIDs, newIDs, distinct := intern(old, new)

	var ops []rawOp
	switch {
	case opts.Engine == EngineLCS:
		ops = lcsScript(oldIDs, newIDs)
	case distinct > maxRunes:
		log.Debugf("section %d: %d distinct rows, falling back to lcs", section, distinct)
		ops = lcsScript(oldIDs, newIDs)
	default:
		ops = myersScript(oldIDs, newIDs, opts.Timeout)
	}

	var rows Rows
	var deletes, inserts []int
	for _, m := range pairMoves(ops) {
		rows.Moves = append(rows.Moves, Move{
			From: snapshot.At(section, m[0]),
			To:   snapshot.At(section, m[1]),
		})
	}
	for _, op := range ops {
		if op.id < 0 {
			continue
		}
		if op.kind == opDelete {
			deletes = append(deletes, op.index)
		} else {
			inserts = append(inserts, op.index)
		}
	}

	slices.Sort(deletes)
	slices.Sort(inserts)

	// An index both deleted and inserted is a row whose content changed in
	// place.
	deleted := make(map[int]bool, len(deletes))
	for _, i := range deletes {
		deleted[i] = true
	}
	reloaded := make(map[int]bool)
	for _, i := range inserts {
		if !deleted[i] {
			continue
		}
		if opts.SameSlot != nil && !opts.SameSlot(old[i], new[i]) {
			continue
		}
		reloaded[i] = true
		rows.Reloads = append(rows.Reloads, snapshot.At(section, i))
	}
	for _, i := range deletes {
		if !reloaded[i] {
			rows.Deletes = append(rows.Deletes, snapshot.At(section, i))
		}
	}
	for _, i := range inserts {
		if !reloaded[i] {
			rows.Inserts = append(rows.Inserts, snapshot.At(section, i))
		}
	}

	slices.SortFunc(rows.Moves, func(a, b Move) int {
		switch {
		case a.From.Less(b.From):
			return -1
		case b.From.Less(a.From):
			return 1
		}
		return 0
	})

	return rows
}

// intern maps every row to a small integer so that both engines compare rows
// with == and never through reflection.
func intern[O comparable](old, new []O) (oldIDs, newIDs []int, distinct int) {
	ids := make(map[O]int, len(old))
	lookup := func(o O) int {
		id, ok := ids[o]
		if !ok {
			id = len(ids)
			ids[o] = id
		}
		return id
	}

	oldIDs = make([]int, len(old))
	for i, o := range old {
		oldIDs[i] = lookup(o)
	}
	newIDs = make([]int, len(new))
	for i, o := range new {
		newIDs[i] = lookup(o)
	}
	return oldIDs, newIDs, len(ids)
}

// Row ids are carried through diffmatchpatch as runes. Ids skip NUL and the
// surrogate block so every rune survives the round trip through string.
const (
	surrogateLo = 0xD800
	surrogateHi = 0xDFFF
	maxRunes    = utf8.MaxRune - (surrogateHi - surrogateLo + 1)
)

func idRune(id int) rune {
	r := rune(id + 1)
	if r >= surrogateLo {
		r += surrogateHi - surrogateLo + 1
	}
	return r
}

func toRunes(ids []int) []rune {
	runes := make([]rune, len(ids))
	for i, id := range ids {
		runes[i] = idRune(id)
	}
	return runes
}

func myersScript(oldIDs, newIDs []int, timeout time.Duration) []rawOp {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = timeout

	diffs := dmp.DiffMainRunes(toRunes(oldIDs), toRunes(newIDs), false)

	var ops []rawOp
	oi, ni := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oi += n
			ni += n
		case diffmatchpatch.DiffDelete:
			for range n {
				ops = append(ops, rawOp{kind: opDelete, index: oi, id: oldIDs[oi]})
				oi++
			}
		case diffmatchpatch.DiffInsert:
			for range n {
				ops = append(ops, rawOp{kind: opInsert, index: ni, id: newIDs[ni]})
				ni++
			}
		}
	}
	return ops
}

func lcsScript(oldIDs, newIDs []int) []rawOp {
	left := make([]interface{}, len(oldIDs))
	for i, id := range oldIDs {
		left[i] = id
	}
	right := make([]interface{}, len(newIDs))
	for i, id := range newIDs {
		right[i] = id
	}

	var ops []rawOp
	oi, ni := 0, 0
	emit := func(oldEnd, newEnd int) {
		for ; oi < oldEnd; oi++ {
			ops = append(ops, rawOp{kind: opDelete, index: oi, id: oldIDs[oi]})
		}
		for ; ni < newEnd; ni++ {
			ops = append(ops, rawOp{kind: opInsert, index: ni, id: newIDs[ni]})
		}
	}

	for _, pair := range lcs.New(left, right).IndexPairs() {
		emit(pair.Left, pair.Right)
		oi, ni = pair.Left+1, pair.Right+1
	}
	emit(len(oldIDs), len(newIDs))

	return ops
}

// pairMoves walks ops in order and pairs each unpaired op with the first later
// unpaired op of the opposite kind carrying the same row. Paired ops are
// marked by setting their id to -1. The result holds [old index, new index]
// pairs.
func pairMoves(ops []rawOp) [][2]int {
	type key struct {
		kind opKind
		id   int
	}

	queues := make(map[key][]int)
	for i, op := range ops {
		k := key{op.kind, op.id}
		queues[k] = append(queues[k], i)
	}

	var moves [][2]int
	for i := range ops {
		op := ops[i]
		if op.id < 0 {
			continue
		}

		opposite := key{opDelete, op.id}
		if op.kind == opDelete {
			opposite.kind = opInsert
		}

		q := queues[opposite]
		for len(q) > 0 && (q[0] < i || ops[q[0]].id < 0) {
			q = q[1:]
		}
		if len(q) == 0 {
			queues[opposite] = q
			continue
		}

		j := q[0]
		queues[opposite] = q[1:]

		from, to := op.index, ops[j].index
		if op.kind == opInsert {
			from, to = to, from
		}
		moves = append(moves, [2]int{from, to})
		ops[i].id = -1
		ops[j].id = -1
	}

	return moves
}
