// Package filter decides which archive entries are materialized during an
// unpack. Rules use rsync-style globs and are evaluated in order; the first
// matching rule wins and an entry no rule matches is kept.
package filter

import "strings"

type rule struct {
	pattern *compiledPattern
	include bool
}

// Chain holds an ordered list of include/exclude rules plus size bounds for
// regular-file payloads.
type Chain struct {
	rules   []rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends a rule dropping entries that match pattern.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude appends a rule keeping entries that match pattern.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, rule{pattern: cp, include: include})
	return nil
}

// SetMinSize drops regular files smaller than n bytes. Zero disables.
func (c *Chain) SetMinSize(n int64) { c.minSize = n }

// SetMaxSize drops regular files larger than n bytes. Zero disables.
func (c *Chain) SetMaxSize(n int64) { c.maxSize = n }

// Empty reports whether the chain keeps every entry.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// UnknownSize disables the size bounds for one Match call. Split pieces
// pass it: a piece's size says nothing about the file it belongs to.
const UnknownSize int64 = -1

// Match reports whether the archive entry called name should be kept.
func (c *Chain) Match(name string, isDir bool, size int64) bool {
	if c.Empty() {
		return true
	}
	name = normalize(name)

	if !isDir && size != UnknownSize {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	for _, r := range c.rules {
		if r.pattern.match(name, isDir) {
			return r.include
		}
	}
	return true
}

// normalize strips the "./" and "/" prefixes and the trailing "/" that tar
// writers commonly put on entry names.
func normalize(name string) string {
	for {
		switch {
		case strings.HasPrefix(name, "./"):
			name = name[2:]
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		default:
			return strings.TrimSuffix(name, "/")
		}
	}
}
