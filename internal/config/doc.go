// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for rowsync's user
// configuration. The configuration is a YAML document named by
// ROWSYNC_CFG_FILE or, failing that, rowsync.yaml in the directory returned by
// os.UserConfigDir:
//   - Linux: $XDG_CONFIG_HOME/rowsync.yaml or $HOME/.config/rowsync.yaml
//   - macOS: $HOME/Library/Application Support/rowsync.yaml
//   - Windows: %AppData%/rowsync.yaml
//
// Keys are addressed with dotted paths such as "diff.engine".
package config
