// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var tldrFlag *cli.BoolFlag = &cli.BoolFlag{
	Name:        "tldr",
	Usage:       "show tldr page",
	Hidden:      !pathHas("tldr"),
	HideDefault: true,
}

// NewGlobalFlags returns the output flags shared by commands that print a
// dataset.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:   "padding",
			Usage:  "spaces between text columns",
			Value:  2,
			Hidden: true,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	if len(params) == 2 {
		for _, f := range flags {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "output" {
				NameSpacedValueChainFlagFromConfigFile(params[0], params[1], sf)
			}
		}
	}

	return
}

// NewDocumentFlags returns the flags that shape how documents are read and
// diffed. params are the command namespace and the config file.
func NewDocumentFlags(params ...string) []cli.Flag {
	ns, path := namespace(params)

	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(ns, path, &cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of row fields, path[:name[:transform]]",
		}),
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "cache version pinned s3 documents",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("ROWSYNC_CACHE")}, configSources(ns, "cache", path)...)...,
			),
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "s3 endpoint override",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ROWSYNC_S3_ENDPOINT")),
		},
		NameSpacedValueChainFlagFromConfigFile(ns, path, &cli.StringFlag{
			Name:    "engine",
			Aliases: []string{"e"},
			Usage:   "row diff engine, myers or lcs",
			Value:   "myers",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ROWSYNC_ENGINE")),
			Validator: func(value string) error {
				return FlagValidators(value, EngineValidator)
			},
		}),
		&cli.StringFlag{
			Name:  "format",
			Usage: "document format, yaml, json or hcl. Detected when unset",
			Validator: func(value string) error {
				return FlagValidators(value, FormatValidator)
			},
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "aws profile for s3 documents",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_PROFILE")),
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "aws region for s3 documents",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_REGION")),
		},
		&cli.BoolFlag{
			Name:    "strict_reloads",
			Aliases: []string{"strict"},
			Usage:   "only reload rows whose key is unchanged",
			Sources: cli.NewValueSourceChain(configSources(ns, "strict_reloads", path)...),
		},
		&cli.IntFlag{
			Name:    "timeout",
			Usage:   "myers engine deadline in milliseconds, 0 for none",
			Sources: cli.NewValueSourceChain(configSources(ns, "timeout", path)...),
		},
		&cli.StringFlag{
			Name:    "where",
			Aliases: []string{"w"},
			Usage:   "comma-separated list of filters rows must pass",
		},
	}
}

// NewSurfaceFlags returns the flags that drive a reconciler and its surface.
func NewSurfaceFlags(params ...string) []cli.Flag {
	ns, path := namespace(params)

	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(ns, path, &cli.StringFlag{
			Name:  "animation",
			Usage: "animation mode, none, sections or rows",
			Value: "rows",
			Validator: func(value string) error {
				return FlagValidators(value, AnimationValidator)
			},
		}),
		&cli.BoolFlag{
			Name:    "moves",
			Usage:   "show moved rows as a delete and an insert",
			Value:   true,
			Sources: cli.NewValueSourceChain(configSources(ns, "moves", path)...),
		},
		NameSpacedValueChainFlagFromConfigFile(ns, path, &cli.StringFlag{
			Name:  "transitions",
			Usage: "reload,insert,delete transitions",
			Value: "fade,left,right",
			Validator: func(value string) error {
				return FlagValidators(value, TransitionsValidator)
			},
		}),
		&cli.IntFlag{
			Name:    "visible",
			Usage:   "rows on screen, 0 for all",
			Sources: cli.NewValueSourceChain(configSources(ns, "visible", path)...),
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	flag.Sources.Chain = append(flag.Sources.Chain, configSources(ns, flag.Name, path)...)
	return flag
}

// configSources returns the config file lookups for a flag: ns.name first,
// then the bare name. Without a namespace only the bare name is used.
func configSources(ns, name, path string) []cli.ValueSource {
	if path == "" {
		return nil
	}
	var srcs []cli.ValueSource
	if ns != "" {
		srcs = append(srcs, yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)))
	}
	return append(srcs, yaml.YAML(name, altsrc.StringSourcer(path)))
}

func namespace(params []string) (ns, path string) {
	if len(params) > 0 {
		ns = params[0]
	}
	if len(params) > 1 {
		path = params[1]
	}
	return
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
