// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/rmctl/internal/meta"
)

const bashCompletionScript = `# bash completion for rmctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_rmctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "browse cq iq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --schema --tldr --api"
    local selection="--name -n --status --species --type --gender --pages -p"

    case "$cmd" in
        browse)
            local opts="$selection --width -W --api --tldr"
            ;;
        cq)
            local opts="$common $selection"
            ;;
        iq)
            local opts="$common $selection --concurrency -j --timeout --width -W --repeat -r --preview --stats"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --status)
            COMPREPLY=( $(compgen -W "alive dead unknown" -- "$cur") )
            return 0
            ;;
        --gender)
            COMPREPLY=( $(compgen -W "female male genderless unknown" -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _rmctl rmctl
`

const zshCompletionScript = `#compdef rmctl

_rmctl() {
  local -a cmds
  cmds=(
    'browse:browse characters and their portraits'
    'cq:character query'
    'iq:image query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  '--tldr[show tldr page]'
  '--api[API root]:url'
  )

  local -a selection
  selection=(
  '(-n --name)'{-n,--name}'[name contains]:name'
  '--status[status]:status:(alive dead unknown)'
  '--species[species]:species'
  '--type[type]:type'
  '--gender[gender]:gender:(female male genderless unknown)'
  '(-p --pages)'{-p,--pages}'[pages to read]:pages'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'rmctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    browse)
      _arguments -C \
        $selection \
        '(-W --width)'{-W,--width}'[preview width]:columns' \
        '--api[API root]:url' \
        '--tldr[show tldr page]'
      ;;
    cq)
      _arguments -C \
        $common \
        $selection
      ;;
    iq)
      _arguments -C \
        $common \
        $selection \
        '(-j --concurrency)'{-j,--concurrency}'[images fetched at once]:count' \
        '--timeout[timeout per pass]:duration' \
        '(-W --width)'{-W,--width}'[preview width]:columns' \
        '(-r --repeat)'{-r,--repeat}'[passes]:count' \
        '--preview[draw images]' \
        '--stats[print counters]' \
        '*:url:_urls'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _rmctl rmctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		switch sh := os.Getenv("SHELL"); {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := Writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: rmctl completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "rmctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
