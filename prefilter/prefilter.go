// Package prefilter rejects input that cannot possibly match a pattern, so
// that callers scanning large amounts of text can skip the simulator for
// most of it.
//
// The filter is built from literal runs that every match of the pattern must
// contain. Extraction is deliberately conservative: a pattern using
// alternation or negation yields no filter at all, and only top-level
// literals that no modifier can elide are kept. A missing filter simply
// means nothing is skipped.
package prefilter

import (
	"strings"

	"github.com/coregx/ahocorasick"
)

// Filter skips input that cannot contain a match. The zero value of *Filter
// (nil) skips nothing.
type Filter struct {
	auto *ahocorasick.Automaton
}

// FromPattern builds a filter for pattern, which must be in the core syntax
// (already expanded). It returns nil when no usable literals can be
// extracted.
func FromPattern(pattern string) *Filter {
	lits := requiredLiterals(pattern)
	if len(lits) == 0 {
		return nil
	}
	b := ahocorasick.NewBuilder()
	for _, lit := range lits {
		b.AddPattern([]byte(lit))
	}
	auto, err := b.Build()
	if err != nil {
		return nil
	}
	return &Filter{auto: auto}
}

// Skip reports that line cannot contain a match. The filter only consults
// the required literals, so a false result never implies a match; it is
// sound because a line lacking every required literal cannot match.
func (f *Filter) Skip(line []byte) bool {
	if f == nil {
		return false
	}
	return !f.auto.IsMatch(line)
}

// requiredLiterals collects the top-level literal runs of pattern that every
// match must contain: bytes outside any group or class, not governed by a
// following '*' or '?'. Patterns with alternation or negation anywhere are
// abandoned, since either can make any literal optional.
func requiredLiterals(pattern string) []string {
	if strings.ContainsAny(pattern, "|{") {
		return nil
	}
	var (
		lits []string
		run  []byte
	)
	flush := func() {
		if len(run) >= 2 {
			lits = append(lits, string(run))
		}
		run = run[:0]
	}
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '(':
			depth := 1
			for i++; i < len(pattern) && depth > 0; i++ {
				switch pattern[i] {
				case '(':
					depth++
				case ')':
					depth--
				case '[':
					for i++; i < len(pattern) && pattern[i] != ']'; i++ {
					}
				}
			}
			i--
			flush()
		case '[':
			for i++; i < len(pattern) && pattern[i] != ']'; i++ {
			}
			flush()
		case '.', '*', '?':
			flush()
		default:
			if i+1 < len(pattern) && (pattern[i+1] == '*' || pattern[i+1] == '?') {
				// The byte is optional, and it also ends the current run.
				flush()
				i++
			} else {
				run = append(run, c)
			}
		}
	}
	flush()
	return lits
}
