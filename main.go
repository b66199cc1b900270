// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tfctl/rowsync/internal/cacheutil"
	"github.com/tfctl/rowsync/internal/command"
	"github.com/tfctl/rowsync/internal/config"
	"github.com/tfctl/rowsync/internal/log"
	"github.com/tfctl/rowsync/internal/version"
)

var ctx = context.Background()

// boolFlags take no value, so the argument after them is never consumed
// while deduplicating.
var boolFlags = map[string]bool{
	"--cache": true, "--chop": true, "--color": true, "-c": true,
	"--delta": true, "--journal": true, "-j": true, "--moves": true,
	"--strict_reloads": true, "--strict": true, "--titles": true, "-t": true,
	"--tldr": true,
}

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs expands @set arguments and config defaults, then drops
// repeated flags so the last occurrence wins.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		return args
	}

	args = processSet(args)
	log.Debugf("args after set processing: args=%v", args)

	return deduplicateFlags(args)
}

// processSet replaces an @name argument with the entries of the command's
// config key "<command>.<name>". Without one, "<command>.defaults" is
// injected right after the command so explicit flags override it.
func processSet(args []string) []string {
	if len(args) < 2 {
		return args
	}

	for i := 2; i < len(args); i++ {
		if strings.HasPrefix(args[i], "@") && len(args[i]) > 1 {
			key := args[1] + "." + args[i][1:]
			rest := append([]string{}, args[i+1:]...)
			return injectConfigSet(append(args[:i], rest...), key, i)
		}
	}

	return injectConfigSet(args, args[1]+".defaults", 2)
}

// injectConfigSet inserts the entries stored under key at insertIdx.
func injectConfigSet(args []string, key string, insertIdx int) []string {
	entries, err := config.GetStringSlice(key)
	if err != nil {
		log.Tracef("no config set %s: err=%v", key, err)
		return args
	}
	return injectEntries(args, entries, insertIdx)
}

// injectEntries splits each entry on whitespace and inserts the fields at
// insertIdx.
func injectEntries(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:insertIdx]...)
	out = append(out, expanded...)
	return append(out, args[insertIdx:]...)
}

// deduplicateFlags keeps only the last occurrence of each flag after the
// command. A flag's value is the next argument unless the flag is known to
// be boolean, is written --flag=value, or is followed by another flag.
// Positional arguments keep their order.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type token struct {
		name  string
		parts []string
	}

	var tokens []token
	for i := 2; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			tokens = append(tokens, token{parts: args[i:]})
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			tokens = append(tokens, token{parts: []string{a}})
			continue
		}

		name, _, hasValue := strings.Cut(a, "=")
		t := token{name: name, parts: []string{a}}
		if !hasValue && !boolFlags[name] && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			t.parts = append(t.parts, args[i+1])
			i++
		}
		tokens = append(tokens, t)
	}

	last := map[string]int{}
	for i, t := range tokens {
		if t.name != "" {
			last[t.name] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, t := range tokens {
		if t.name != "" && last[t.name] != i {
			continue
		}
		out = append(out, t.parts...)
	}
	return out
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	}

	if hours, err := config.GetInt("cache.clean"); err == nil {
		if err := cacheutil.Purge(hours); err != nil {
			log.Warnf("cache purge: %v", err)
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}
