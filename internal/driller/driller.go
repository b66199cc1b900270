// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRegex matches one path segment: a key optionally followed by [],
// [n] or [*].
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(\[(\d+|\*)?\])?$`)

// Driller navigates JSON using a dot path. A segment naming an array picks
// element n with [n], keeps the whole array with [*], and otherwise collapses
// single element arrays. An invalid segment or out of range index yields an
// empty result.
func Driller(jsonData string, path string) gjson.Result {
	current := gjson.Parse(jsonData)
	if path == "" || path == "." {
		return current
	}

	for _, p := range strings.Split(strings.TrimPrefix(path, "."), ".") {
		matches := segmentRegex.FindStringSubmatch(p)
		if len(matches) == 0 {
			return gjson.Result{}
		}

		val := current.Get(matches[1])
		if !val.IsArray() {
			current = val
			continue
		}

		arr := val.Array()
		switch matches[3] {
		case "*":
		case "":
			if len(arr) == 1 {
				val = arr[0]
			}
		default:
			i, err := strconv.Atoi(matches[3])
			if err != nil || i >= len(arr) {
				return gjson.Result{}
			}
			val = arr[i]
		}

		current = val
	}

	return current
}

// String drills path and returns its string form, or "" and false when the
// path does not exist or is null.
func String(jsonData string, path string) (string, bool) {
	r := Driller(jsonData, path)
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	return r.String(), true
}
