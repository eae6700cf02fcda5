package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/flagtree/internal/config"
	"mvdan.cc/sh/v3/syntax"
)

// CompleteCommand is the hidden first argument that switches a program into completion mode.
const CompleteCommand = "__complete"

const bashScript = `# bash completion for @PROGRAM@
# Generated by flagtree. Load with: source <(@PROGRAM@ completion bash)

_@FUNC@_complete() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    local -a words=("${COMP_WORDS[@]:1:COMP_CWORD-1}")
    local -a candidates=() help=()
    local out line

    out=$(@ENV@=bash "${COMP_WORDS[0]}" @COMPLETE@ "${words[@]}" "$cur" 2>/dev/null) || return 0

    while IFS= read -r line; do
        [[ -z "$line" ]] && continue
        if [[ "$line" == @MARKER@* ]]; then
            help+=("${line#@MARKER@ }")
        else
            candidates+=("$line")
        fi
    done <<< "$out"

    if (( ${#help[@]} > 0 )); then
        printf '\n%s' "${help[@]}" >&2
        printf '\n' >&2
    fi

    COMPREPLY=("${candidates[@]}")
    if (( ${#COMPREPLY[@]} == 1 )) && [[ "${COMPREPLY[0]}" == */ || "${COMPREPLY[0]}" == *= ]]; then
        compopt -o nospace 2>/dev/null
    fi
    return 0
}

complete -F _@FUNC@_complete @QPROGRAM@
`

const zshScript = `#compdef @PROGRAM@
# zsh completion for @PROGRAM@
# Generated by flagtree. Load with: source <(@PROGRAM@ completion zsh)

_@FUNC@() {
    local -a candidates help
    local out line

    out=$(@ENV@=zsh "${words[1]}" @COMPLETE@ "${(@)words[2,CURRENT]}" 2>/dev/null) || return 1

    for line in "${(@f)out}"; do
        [[ -z "$line" ]] && continue
        if [[ "$line" == @MARKER@::* ]]; then
            help+=("${line#@MARKER@::}")
        else
            candidates+=("$line")
        fi
    done

    for line in "${help[@]}"; do
        compadd -x "$line"
    done

    if (( ${#candidates} )); then
        _describe -t values '@PROGRAM@' candidates
    fi
}

compdef _@FUNC@ @QPROGRAM@
`

const fishScript = `# fish completion for @PROGRAM@
# Generated by flagtree. Load with: @PROGRAM@ completion fish | source

function __@FUNC@_complete
    set -l tokens (commandline -opc)
    set -l current (commandline -ct)
    set -l program $tokens[1]
    set -e tokens[1]

    for line in (env @ENV@=fish $program @COMPLETE@ $tokens $current 2>/dev/null)
        # fish has no slot for help messages.
        if not string match -q -- '@MARKER@*' $line
            echo $line
        end
    end
end

complete -c @QPROGRAM@ -f -a '(__@FUNC@_complete)'
`

// EnvVar returns the variable that selects the output dialect of program, e.g. KUBECTL_COMPLETE.
func EnvVar(program string) string {
	return config.EnvName(program) + "_COMPLETE"
}

// Script writes the completion script of shell s for program.
func Script(w io.Writer, s Shell, program string) error {
	var tmpl string
	switch s {
	case Bash:
		tmpl = bashScript
	case Zsh:
		tmpl = zshScript
	case Fish:
		tmpl = fishScript
	default:
		return fmt.Errorf("unsupported shell %q", string(s))
	}
	quoted, err := syntax.Quote(program, syntax.LangBash)
	if err != nil {
		return fmt.Errorf("cannot quote program name %q: %w", program, err)
	}
	r := strings.NewReplacer(
		"@PROGRAM@", program,
		"@QPROGRAM@", quoted,
		"@FUNC@", identifier(program),
		"@ENV@", EnvVar(program),
		"@COMPLETE@", CompleteCommand,
		"@MARKER@", ActiveHelpMarker,
	)
	_, err = io.WriteString(w, r.Replace(tmpl))
	return err
}

// identifier turns program into a valid shell function name fragment.
func identifier(program string) string {
	var b strings.Builder
	for _, r := range program {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
