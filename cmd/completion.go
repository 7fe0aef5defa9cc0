package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const globalFlags = "-dir -backend -log-level -log-json"

const bashCompletion = `_locknote() {
    local cur prev words cword
    _init_completion || return

    local commands="init new show edit rm ls status recover passwd diff search history compact keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    if [[ "$cur" == -* ]]; then
        local flags="` + globalFlags + `"
        case "${words[1]}" in
            new) flags="$flags -title -tags -file" ;;
            edit) flags="$flags -title -tags -file" ;;
            show) flags="$flags -clip" ;;
            ls) flags="$flags -tag" ;;
            recover) flags="$flags -print" ;;
            passwd) flags="$flags -rekey" ;;
            search) flags="$flags -full" ;;
            history) flags="$flags -n" ;;
        esac
        COMPREPLY=($(compgen -W "$flags" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        show|edit|rm|recover)
            # Complete with note ID prefixes from the index
            local notes
            notes=$(locknote ls 2>/dev/null | awk '/^  [0-9a-f]/ {print $1}')
            COMPREPLY=($(compgen -W "$notes" -- "$cur"))
            ;;
        diff)
            if [[ $cword -eq 2 ]]; then
                local notes
                notes=$(locknote ls 2>/dev/null | awk '/^  [0-9a-f]/ {print $1}')
                COMPREPLY=($(compgen -W "$notes" -- "$cur"))
            else
                _filedir
            fi
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _locknote locknote
`

const zshCompletion = `#compdef locknote

_locknote() {
    local -a commands
    commands=(
        'init:Create a new encrypted notebook'
        'new:Create a note'
        'show:Decrypt and print a note'
        'edit:Change a note'
        'rm:Delete notes'
        'ls:List notes'
        'status:Show notebook status'
        'recover:Re-encrypt a note sealed under an old password'
        'passwd:Change notebook password'
        'diff:Compare a note with a local file'
        'search:Search notes'
        'history:Show access history'
        'compact:Compact the bolt database'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'locknote commands' commands
            ;;
        args)
            case "${words[2]}" in
                show)
                    _arguments \
                        '-clip[Copy to the clipboard]' \
                        '1:note:_locknote_notes'
                    ;;
                rm)
                    _arguments '*:note:_locknote_notes'
                    ;;
                edit)
                    _arguments \
                        '-title[New title]:title:' \
                        '-tags[Comma-separated tags]:tags:' \
                        '-file[Read content from file]:file:_files' \
                        '1:note:_locknote_notes'
                    ;;
                recover)
                    _arguments \
                        '-print[Print the recovered note]' \
                        '1:note:_locknote_notes'
                    ;;
                passwd)
                    _arguments '-rekey[Re-encrypt every note with the new password]'
                    ;;
                diff)
                    _arguments '1:note:_locknote_notes' '2:file:_files'
                    ;;
                search)
                    _arguments '-full[Show match positions and context]' '1:query:'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'locknote commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_locknote_notes() {
    local -a notes
    notes=(${(f)"$(locknote ls 2>/dev/null | awk '/^  [0-9a-f]/ {print $1}')"})
    _describe -t notes 'notes' notes
}

_locknote "$@"
`

const fishCompletion = `# locknote fish completions

set -l commands init new show edit rm ls status recover passwd diff search history compact keyring help completion

complete -c locknote -f

# Commands
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create a new notebook'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a new -d 'Create a note'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a show -d 'Decrypt and print a note'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a edit -d 'Change a note'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Delete notes'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List notes'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show notebook status'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a recover -d 'Recover a stale note'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change password'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare note with file'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a search -d 'Search notes'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a history -d 'Show access history'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact bolt database'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c locknote -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# note arguments
complete -c locknote -n "__fish_seen_subcommand_from show edit rm recover diff" -a "(locknote ls 2>/dev/null | awk '/^  [0-9a-f]/ {print \$1}')"

# flags
complete -c locknote -n "__fish_seen_subcommand_from new edit" -o title -d 'Note title'
complete -c locknote -n "__fish_seen_subcommand_from new edit" -o tags -d 'Comma-separated tags'
complete -c locknote -n "__fish_seen_subcommand_from new edit" -o file -F -d 'Read content from file'
complete -c locknote -n "__fish_seen_subcommand_from show" -o clip -d 'Copy to the clipboard'
complete -c locknote -n "__fish_seen_subcommand_from recover" -o print -d 'Print the recovered note'
complete -c locknote -n "__fish_seen_subcommand_from passwd" -o rekey -d 'Re-encrypt every note'
complete -c locknote -n "__fish_seen_subcommand_from ls" -o tag -d 'Filter by tag'
complete -c locknote -n "__fish_seen_subcommand_from search" -o full -d 'Show match positions and context'
complete -c locknote -n "__fish_seen_subcommand_from history" -o n -d 'Number of entries'
complete -c locknote -o dir -d 'Data directory'
complete -c locknote -o backend -a "file bolt" -d 'Storage backend'

# keyring subcommands
complete -c locknote -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c locknote -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c locknote -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
