package enforcement

import (
	"fmt"
	"regexp"
)

// PatternMatch identifies the forbidden pattern that matched a message.
type PatternMatch struct {
	Index   int
	Pattern string
	Match   string
}

// ContentScanner checks text against an ordered list of forbidden patterns.
type ContentScanner struct {
	patterns []*regexp.Regexp
	sources  []string
}

// NewContentScanner compiles patterns case-insensitive and multiline.
func NewContentScanner(patterns []string) (*ContentScanner, error) {
	s := &ContentScanner{
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
		sources:  make([]string, 0, len(patterns)),
	}
	for i, p := range patterns {
		re, err := regexp.Compile("(?im)" + p)
		if err != nil {
			return nil, fmt.Errorf("forbidden pattern %d (%q): %w", i, p, err)
		}
		s.patterns = append(s.patterns, re)
		s.sources = append(s.sources, p)
	}
	return s, nil
}

// Scan returns the first pattern, in configured order, found in content.
func (s *ContentScanner) Scan(content string) (PatternMatch, bool) {
	for i, re := range s.patterns {
		if loc := re.FindStringIndex(content); loc != nil {
			return PatternMatch{
				Index:   i,
				Pattern: s.sources[i],
				Match:   content[loc[0]:loc[1]],
			}, true
		}
	}
	return PatternMatch{}, false
}

// Len returns the number of loaded patterns.
func (s *ContentScanner) Len() int {
	return len(s.patterns)
}
