package osc

/*------------------------------------------------------------------
 *
 * Purpose:	Match OSC address patterns against concrete paths. Never
 *		errors: a malformed pattern (unclosed '[' or '{') just
 *		fails to match rather than panicking or returning an error.
 *		Registration-time validation, which DOES surface
 *		a PatternError, lives in the dispatcher package.
 *
 *---------------------------------------------------------------*/

// Match reports whether pattern matches path, anchored at both ends over
// the entire string. Supported wildcards: '?', '*', '[set]' (with 'a-z'
// ranges and a leading '!'/'^' negation), '{a,b,c}' alternation with
// nested patterns. None of '?', '*', '[...]' ever cross a '/'.
func Match(pattern, path string) bool {
	ok, _, _ := matchFrom(pattern, 0, path, 0)
	return ok
}

// matchFrom attempts to match pattern[pi:] against path[si:] and reports
// whether the whole remainder of pattern was consumed against the whole
// remainder of path. The extra return values are pattern and path
// positions reached; no caller reads them.
func matchFrom(pattern string, pi int, path string, si int) (bool, int, int) {
	for pi < len(pattern) {
		switch pattern[pi] {
		case '?':
			if si >= len(path) || path[si] == '/' {
				return false, pi, si
			}
			pi++
			si++

		case '*':
			// Collapse consecutive '*' and try every split point,
			// shortest-match-first, backtracking to longer ones so
			// trailing literals still have a chance; never cross '/'.
			for pi < len(pattern) && pattern[pi] == '*' {
				pi++
			}
			if pi == len(pattern) {
				// Trailing '*' matches the rest of this path segment.
				for si < len(path) && path[si] != '/' {
					si++
				}
				return si == len(path), pi, si
			}
			for k := si; k <= len(path); k++ {
				if k > si && path[k-1] == '/' {
					break
				}
				if ok, _, _ := matchFrom(pattern, pi, path, k); ok {
					return true, pi, k
				}
			}
			return false, pi, si

		case '[':
			end := findClose(pattern, pi, ']')
			if end < 0 {
				return false, pi, si
			}
			if si >= len(path) || path[si] == '/' {
				return false, pi, si
			}
			if !matchSet(pattern[pi+1:end], path[si]) {
				return false, pi, si
			}
			pi = end + 1
			si++

		case '{':
			end := findBraceClose(pattern, pi)
			if end < 0 {
				return false, pi, si
			}
			alts := splitAlternatives(pattern[pi+1 : end])
			rest := pattern[end+1:]
			for _, alt := range alts {
				if ok, _, nsi := matchFrom(alt+rest, 0, path, si); ok {
					return true, len(pattern), nsi
				}
			}
			return false, pi, si

		default:
			if si >= len(path) || path[si] != pattern[pi] {
				return false, pi, si
			}
			pi++
			si++
		}
	}
	return si == len(path), pi, si
}

// findClose finds the index of the first close byte at or after
// start+1, returning -1 if there isn't one (malformed pattern).
func findClose(s string, start int, close byte) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] == close {
			return i
		}
	}
	return -1
}

// findBraceClose finds the matching '}' for the '{' at index start,
// accounting for nested braces.
func findBraceClose(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitAlternatives splits a {...} body on top-level commas, respecting
// nested braces.
func splitAlternatives(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// matchSet matches a single character against a bracket set body (the
// part between '[' and ']'), with optional leading negation and 'a-z'
// range expansion. '/' never matches, even if nominally in range.
func matchSet(set string, c byte) bool {
	if c == '/' {
		return false
	}
	negate := false
	if len(set) > 0 && (set[0] == '!' || set[0] == '^') {
		negate = true
		set = set[1:]
	}
	matched := false
	for i := 0; i < len(set); i++ {
		if i+2 < len(set) && set[i+1] == '-' {
			lo, hi := set[i], set[i+2]
			if lo <= c && c <= hi {
				matched = true
			}
			i += 2
			continue
		}
		if set[i] == c {
			matched = true
		}
	}
	if negate {
		return !matched
	}
	return matched
}
