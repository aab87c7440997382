package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is one glob rule compiled to a regular expression.
type compiledPattern struct {
	re      *regexp.Regexp
	source  string
	dirOnly bool // trailing "/"
}

// compilePattern compiles an rsync-style glob. A leading "/" or any inner
// "/" anchors the pattern at the archive root; otherwise it matches the last
// path components. "*" and "?" stop at "/", "**" does not.
func compilePattern(pattern string) (*compiledPattern, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty filter pattern")
	}
	cp := &compiledPattern{source: pattern}

	body := pattern
	if strings.HasSuffix(body, "/") {
		cp.dirOnly = true
		body = strings.TrimSuffix(body, "/")
	}

	anchored := strings.Contains(body, "/")
	body = strings.TrimPrefix(body, "/")

	prefix := "(^|/)"
	if anchored {
		prefix = "^"
	}
	re, err := regexp.Compile(prefix + globToRegex(body) + "$")
	if err != nil {
		return nil, fmt.Errorf("filter pattern %q: %w", pattern, err)
	}
	cp.re = re
	return cp, nil
}

func (cp *compiledPattern) match(name string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	return cp.re.MatchString(name)
}

// globToRegex translates glob syntax into an unanchored regexp body.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if !strings.HasPrefix(glob[i:], "**") {
				b.WriteString("[^/]*")
				continue
			}
			if strings.HasPrefix(glob[i:], "**/") {
				b.WriteString("(.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// classEnd returns the index of the "]" closing the class opened at start,
// or -1 if the class is unterminated. A "]" right after "[" or "[!" is a
// literal member.
func classEnd(glob string, start int) int {
	j := start + 1
	if j < len(glob) && glob[j] == '!' {
		j++
	}
	if j < len(glob) && glob[j] == ']' {
		j++
	}
	for ; j < len(glob); j++ {
		if glob[j] == ']' {
			return j
		}
	}
	return -1
}
