// Package pathutil provides path normalisation primitives shared by the
// path validator and the session log path resolver. All normalisation is
// string-based rather than filesystem-based: it never touches disk.
package pathutil

import "strings"

// The three Unicode separator variants attackers use to spoof a path
// separator past string-based filters that only look for ASCII '/'.
const (
	fullwidthSolidus = '／'
	fractionSlash    = '⁄'
	divisionSlash    = '∕'
)

// NormalizePath rewrites adversarial Unicode separators and backslashes
// to '/', then resolves '.' and '..' components against a logical
// component stack. Absolute paths remain absolute; relative paths remain
// relative. No filesystem access occurs.
func NormalizePath(p string) string {
	return normalizeComponents(applySecurityTransforms(p))
}

func applySecurityTransforms(p string) string {
	hasSpecial := false
	for _, r := range p {
		if r == fullwidthSolidus || r == fractionSlash || r == divisionSlash || r == '\\' {
			hasSpecial = true
			break
		}
	}
	if !hasSpecial {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	for _, r := range p {
		switch r {
		case fullwidthSolidus, fractionSlash, divisionSlash, '\\':
			b.WriteByte('/')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeComponents(p string) string {
	if p == "" {
		return p
	}
	absolute := strings.HasPrefix(p, "/")

	raw := strings.Split(p, "/")
	stack := make([]string, 0, len(raw))
	for _, c := range raw {
		switch c {
		case "", ".":
			// empty components (double slashes) and current-dir markers vanish.
			continue
		case "..":
			if len(stack) > 0 && stack[len(stack)-1] != ".." {
				stack = stack[:len(stack)-1]
				continue
			}
			if absolute {
				// ".." above root is discarded.
				continue
			}
			stack = append(stack, "..")
		default:
			stack = append(stack, c)
		}
	}

	joined := strings.Join(stack, "/")
	if absolute {
		return "/" + joined
	}
	if joined == "" {
		return "."
	}
	return joined
}

// PathsEqual reports whether a and b normalise to the same path.
// Comparison is case-sensitive.
func PathsEqual(a, b string) bool {
	return NormalizePath(a) == NormalizePath(b)
}

// RelativePath computes the component sequence of ".." and normal names
// that, joined to base, yields target after normalisation. Equal inputs
// produce ".".
func RelativePath(base, target string) string {
	nb := NormalizePath(base)
	nt := NormalizePath(target)
	if nb == nt {
		return "."
	}

	baseComponents := normalComponents(nb)
	targetComponents := normalComponents(nt)

	common := 0
	for common < len(baseComponents) && common < len(targetComponents) && baseComponents[common] == targetComponents[common] {
		common++
	}

	ups := len(baseComponents) - common
	parts := make([]string, 0, ups+len(targetComponents)-common)
	for i := 0; i < ups; i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, targetComponents[common:]...)

	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func normalComponents(p string) []string {
	raw := strings.Split(p, "/")
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "" || c == "." || c == ".." {
			continue
		}
		out = append(out, c)
	}
	return out
}
