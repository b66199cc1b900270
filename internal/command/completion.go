// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowsync/internal/meta"
)

const bashCompletionScript = `# bash completion for rowsync
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_rowsync()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "diff play completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local docs="--attrs -a --cache --endpoint --engine -e --format --profile --region --strict_reloads --timeout --where -w"
    local view="--animation --moves --transitions --visible --journal -j --tldr"

    case "$cmd" in
        diff)
            local opts="$docs $view --chop --delta --color -c --filter -f --output -o --sort -s --titles -t"
            ;;
        play)
            local opts="$docs $view --flash --interval -i"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts=""
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --engine|-e)
            COMPREPLY=( $(compgen -W "myers lcs" -- "$cur") )
            return 0
            ;;
        --animation)
            COMPREPLY=( $(compgen -W "none sections rows" -- "$cur") )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "yaml json hcl" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Documents are files.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _rowsync rowsync
`

const zshCompletionScript = `#compdef rowsync

_rowsync() {
  local -a cmds
  cmds=(
    'diff:edit script between two documents'
    'play:step a list view through documents'
    'completion:generate shell completion script'
  )

  local -a docs
  docs=(
  '(-a --attrs)'{-a,--attrs}'[row fields]:attrs'
  '--cache[cache version pinned s3 documents]'
  '--endpoint[s3 endpoint]:url'
  '(-e --engine)'{-e,--engine}'[row diff engine]:engine:(myers lcs)'
  '--format[document format]:format:(yaml json hcl)'
  '--profile[aws profile]:profile'
  '--region[aws region]:region'
  '--strict_reloads[only reload rows whose key is unchanged]'
  '--timeout[myers deadline in ms]:ms'
  '(-w --where)'{-w,--where}'[row filters]:filters'
  '--animation[animation mode]:mode:(none sections rows)'
  '--moves[show moved rows]'
  '--transitions[reload,insert,delete transitions]:transitions'
  '--visible[rows on screen]:rows'
  '(-j --journal)'{-j,--journal}'[print surface calls]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'rowsync commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    diff)
      _arguments -C \
        $docs \
        '--chop[chop common key prefix]' \
        '--delta[structural delta of the raw documents]' \
        '(-c --color)'{-c,--color}'[enable colored text]' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)' \
        '(-s --sort)'{-s,--sort}'[sort attributes]:attrs' \
        '(-t --titles)'{-t,--titles}'[show titles]' \
        '1:OLD:_files' \
        '2:NEW:_files'
      ;;
    play)
      _arguments -C \
        $docs \
        '--flash[ms a batch stays highlighted]:ms' \
        '(-i --interval)'{-i,--interval}'[ms between documents]:ms' \
        '*:DOC:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _rowsync rowsync
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: rowsync completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "rowsync completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
