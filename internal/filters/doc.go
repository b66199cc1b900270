// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects document rows with --filter expressions.
//
// An expression is key[op]value where key is an attr output name (see the
// attrs package) and op is one of:
//
//   - = : equal
//   - ~ : equal ignoring case
//   - ^ : prefix
//   - < : less than (numeric when the value is a number)
//   - > : greater than (numeric when the value is a number)
//   - @ : substring, or membership for array and map values
//   - / : regular expression
//
// Any operator may be negated with a leading "!", as in text!@draft. A bare
// key ("done") keeps rows where the value is present and truthy and "!done"
// keeps the rest. Expressions are comma separated unless
// ROWSYNC_FILTER_DELIM names another delimiter.
//
// Examples:
//
//   - "key^inv-" : keys starting with "inv-"
//   - "prio>2" : numeric priority above two
//   - "text/^(fix|feat):" : text matching a regex
//   - "tags@urgent" : tags array containing "urgent"
package filters
