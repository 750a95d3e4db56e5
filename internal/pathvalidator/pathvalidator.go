// Package pathvalidator implements workspace-boundary enforcement and the
// attack-pattern catalogue that together make up the gate's path
// security policy.
package pathvalidator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/pathutil"
)

// macOS resolves /var to /private/var; containment checks must treat
// the two prefixes as equivalent or every temp-directory flow on macOS
// misbehaves.
const (
	varPrefix        = "/var/"
	privateVarPrefix = "/private/var/"
)

// Validator holds an immutable pair of allowed roots and blocked glob
// patterns. Roots are canonicalised eagerly at construction; patterns
// are retained as strings and matched lazily.
type Validator struct {
	allowedRoots   []string
	blockedPatterns []string
}

// New canonicalises every root eagerly and retains patterns verbatim.
// A root that does not yet exist is canonicalised by resolving its
// parent and joining the leaf name; a root whose parent also does not
// exist falls back to syntactic normalisation.
func New(allowedRoots, blockedPatterns []string) (*Validator, error) {
	canonical := make([]string, 0, len(allowedRoots))
	for _, root := range allowedRoots {
		c, err := safeCanonicalize(root)
		if err != nil {
			return nil, gateerr.NewPathValidation("invalid-workspace", root)
		}
		canonical = append(canonical, c)
	}
	patterns := make([]string, len(blockedPatterns))
	copy(patterns, blockedPatterns)
	return &Validator{allowedRoots: canonical, blockedPatterns: patterns}, nil
}

// safeCanonicalize resolves symlinks and makes p absolute. If p does not
// exist, it canonicalises p's parent directory and rejoins the leaf name;
// if the parent does not resolve either, it returns the cleaned absolute
// path without resolving any further ancestor.
func safeCanonicalize(p string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return "", err
		}
		return filepath.Clean(abs), nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	dir, base := filepath.Split(abs)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir == "" {
		return filepath.Clean(abs), nil
	}
	if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolvedDir, base), nil
	}
	return filepath.Clean(abs), nil
}

// ValidateWorkspacePath is the single entry point for path-security
// decisions. path is the raw, untrusted input; workspaceRoot must be one
// of the validator's canonical allowed roots.
func (v *Validator) ValidateWorkspacePath(path, workspaceRoot string) (string, error) {
	canonicalWorkspace, isAllowed := v.canonicalAllowedRoot(workspaceRoot)
	if !isAllowed {
		return "", gateerr.NewPathValidation("outside-workspace", workspaceRoot)
	}

	var target string
	if filepath.IsAbs(path) {
		target = path
	} else {
		target = filepath.Join(canonicalWorkspace, pathutil.NormalizePath(path))
	}

	canonicalTarget, err := safeCanonicalize(target)
	if err != nil {
		return "", gateerr.NewPathValidation("canonicalization-failed", path)
	}

	if !isWithinWorkspace(canonicalTarget, canonicalWorkspace) {
		return "", gateerr.NewPathValidation("outside-workspace", path)
	}

	if containsAttackPattern(path) {
		return "", gateerr.NewPathValidation("path-traversal", path)
	}

	return canonicalTarget, nil
}

func (v *Validator) canonicalAllowedRoot(root string) (string, bool) {
	canonicalRoot, err := safeCanonicalize(root)
	if err != nil {
		return "", false
	}
	for _, allowed := range v.allowedRoots {
		if allowed == canonicalRoot {
			return allowed, true
		}
	}
	return "", false
}

// isWithinWorkspace checks containment via direct prefix match, falling
// back to the bidirectional /var <-> /private/var equivalence.
func isWithinWorkspace(target, workspace string) bool {
	if target == workspace || strings.HasPrefix(target, workspace+string(filepath.Separator)) {
		return true
	}
	return macosSymlinkEquivalent(target, workspace)
}

func macosSymlinkEquivalent(target, workspace string) bool {
	rewrite := func(p string) (string, bool) {
		switch {
		case strings.HasPrefix(p, varPrefix):
			return privateVarPrefix[:len(privateVarPrefix)-1] + p[len(varPrefix)-1:], true
		case strings.HasPrefix(p, privateVarPrefix):
			return varPrefix[:len(varPrefix)-1] + p[len(privateVarPrefix)-1:], true
		default:
			return "", false
		}
	}

	if rewritten, ok := rewrite(target); ok {
		if rewritten == workspace || strings.HasPrefix(rewritten, workspace+string(filepath.Separator)) {
			return true
		}
	}
	if rewritten, ok := rewrite(workspace); ok {
		if target == rewritten || strings.HasPrefix(target, rewritten+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// IsBlockedPath matches path against every blocked pattern as a Unix
// glob, against three representations: the full path, just the
// filename, and the last k components joined by "/" for k in {1,2,3}.
// An empty pattern set blocks nothing.
func (v *Validator) IsBlockedPath(path string) bool {
	if len(v.blockedPatterns) == 0 {
		return false
	}

	candidates := candidateRepresentations(path)
	for _, pattern := range v.blockedPatterns {
		for _, candidate := range candidates {
			if matchGlob(pattern, candidate) {
				return true
			}
		}
	}
	return false
}

func candidateRepresentations(path string) []string {
	normalized := filepath.ToSlash(path)
	parts := strings.Split(strings.Trim(normalized, "/"), "/")

	out := []string{normalized, filepath.Base(path)}
	for k := 1; k <= 3 && k <= len(parts); k++ {
		out = append(out, strings.Join(parts[len(parts)-k:], "/"))
	}
	return out
}

func matchGlob(pattern, candidate string) bool {
	ok, err := filepath.Match(pattern, candidate)
	if err != nil {
		// Pattern failed to compile as a glob: fall back to substring match.
		return strings.Contains(candidate, pattern)
	}
	return ok
}

// GenerateWorkspacePath deterministically joins root / (sessionID +
// "_" + agentType). Not itself a validation; callers validate
// afterwards if needed.
func GenerateWorkspacePath(root, sessionID, agentType string) string {
	return filepath.Join(root, fmt.Sprintf("%s_%s", sessionID, agentType))
}

// containsAttackPattern scans the raw input string for the full
// attack-pattern catalogue: literal traversal, Unicode separator
// spoofing combined with "..", URL-encoded traversal, control-character
// injection combined with "..", suspicious system-path targeting, and
// Windows drive-letter or UNC prefixes.
func containsAttackPattern(path string) bool {
	return containsLiteralTraversal(path) ||
		containsUnicodeTraversal(path) ||
		containsURLEncodedTraversal(path) ||
		containsControlCharTraversal(path) ||
		containsSuspiciousSystemPath(path) ||
		isWindowsDriveOrUNC(path)
}

func containsLiteralTraversal(path string) bool {
	return strings.Contains(path, "../") ||
		strings.Contains(path, `..\`) ||
		strings.Contains(path, "/..") ||
		strings.Contains(path, `\..`) ||
		strings.HasPrefix(path, "..")
}

func containsUnicodeTraversal(path string) bool {
	if !strings.Contains(path, "..") {
		return false
	}
	for _, sep := range []rune{'／', '⁄', '∕'} {
		s := string(sep)
		if strings.Contains(path, ".."+s) || strings.Contains(path, s+"..") {
			return true
		}
	}
	return false
}

func containsURLEncodedTraversal(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e%252e")
}

func containsControlCharTraversal(path string) bool {
	if !strings.Contains(path, "..") {
		return false
	}
	for _, c := range []string{"\x00", "\n", "\r", "\t"} {
		if strings.Contains(path, c) {
			return true
		}
	}
	return false
}

func containsSuspiciousSystemPath(path string) bool {
	systemPaths := []string{"/etc/", `\etc\`, "/proc/", "/sys/", "/dev/"}
	lower := strings.ToLower(path)
	hasSystemPath := false
	for _, sp := range systemPaths {
		if strings.Contains(path, sp) {
			hasSystemPath = true
			break
		}
	}
	if !hasSystemPath {
		return false
	}
	return strings.Contains(path, "..") || strings.Contains(lower, "%2e")
}

func isWindowsDriveOrUNC(path string) bool {
	if strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//") {
		return true
	}
	if len(path) >= 2 && isASCIILetter(path[0]) && path[1] == ':' && strings.Count(path, ":") == 1 {
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
