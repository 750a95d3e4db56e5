// Package cmdvalidator detects destructive shell command invocations
// before they reach the host's tool executor.
package cmdvalidator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/maos-gate/gate/internal/gateerr"
)

// pattern pairs a compiled regex with the human category it detects.
type pattern struct {
	Regex    *regexp.Regexp
	Category string
}

// dangerousPatterns is the mandatory catalogue, compiled once at process
// start and matched in declaration order.
var dangerousPatterns []pattern

func init() {
	rawPatterns := []struct {
		expr     string
		category string
	}{
		{`rm\s+(-[rRf]+|--recursive|--force)[\s\S]*?(/|/\*|~|~/|\$HOME|\$\{HOME\}|\*|\.\.|\.)(\s|$)`, "recursive force removal of root"},
		{`sudo\s+rm\s+(-[rRf]+|--recursive|--force)`, "sudo recursive removal"},
		{`chmod\s+-R\s+000`, "recursive permission wipe"},
		{`kill\s+-9\s+-1`, "kill all processes"},
		{`mkfs\.`, "filesystem format"},
		{`dd\s+[\s\S]*?of=/dev/[sh]d`, "raw disk write"},
	}
	dangerousPatterns = make([]pattern, 0, len(rawPatterns))
	for _, p := range rawPatterns {
		dangerousPatterns = append(dangerousPatterns, pattern{
			Regex:    regexp.MustCompile(p.expr),
			Category: p.category,
		})
	}
}

// dangerousLiteralPaths is the set of positional arguments that make a
// recursive rm dangerous even without a matching -f flag.
var dangerousLiteralPaths = map[string]bool{
	"/": true, "/*": true, "~": true, "~/": true, "$HOME": true, "${HOME}": true,
	"*": true, ".": true, "..": true, "../": true,
}

// Validate returns an error naming the detected category if command
// matches the mandatory catalogue or the refined rm parser; nil
// otherwise.
func Validate(command string) error {
	for _, p := range dangerousPatterns {
		if p.Regex.MatchString(command) {
			return &gateerr.Security{
				Kind:    "suspicious-command",
				Message: fmt.Sprintf("%s: %s", p.Category, command),
			}
		}
	}
	if IsDangerousRM(command) {
		return &gateerr.Security{
			Kind:    "suspicious-command",
			Message: fmt.Sprintf("dangerous rm invocation: %s", command),
		}
	}
	return nil
}

// IsDangerousRM tokenises command by whitespace, tracks recursive/force
// flags across short clusters, long flags and the "--" terminator, and
// reports whether the invocation is dangerous: recursive and force
// together, or recursive plus a literal dangerous path argument.
func IsDangerousRM(command string) bool {
	tokens := strings.Fields(command)
	if len(tokens) == 0 || tokens[0] != "rm" {
		return false
	}

	var recursive, force bool
	var positional bool
	dangerousArg := false

	for _, tok := range tokens[1:] {
		if positional {
			if dangerousLiteralPaths[tok] {
				dangerousArg = true
			}
			continue
		}
		switch {
		case tok == "--":
			positional = true
		case tok == "--recursive":
			recursive = true
		case tok == "--force":
			force = true
		case strings.HasPrefix(tok, "--"):
			// unrecognised long flag, ignore.
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			for _, c := range tok[1:] {
				if c == 'r' || c == 'R' {
					recursive = true
				}
				if c == 'f' {
					force = true
				}
			}
		default:
			positional = true
			if dangerousLiteralPaths[tok] {
				dangerousArg = true
			}
		}
	}

	if !recursive {
		return false
	}
	return force || dangerousArg
}
