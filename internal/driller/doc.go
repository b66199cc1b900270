// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller walks canonical JSON snapshot documents with short dot
// paths such as "sections[1].rows" or "meta.id".
package driller
