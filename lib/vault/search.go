// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// SearchMethod selects how a pattern is compared with secret targets.
// Every method is case-insensitive.
type SearchMethod int

const (
	// MatchExact compares the whole target with the pattern.
	MatchExact SearchMethod = iota

	// MatchWildcard treats the pattern as a glob anchored at both
	// ends: '*' matches any run of characters and '?' matches exactly
	// one. Every other character, including brackets, braces and
	// backslashes, matches itself.
	MatchWildcard

	// MatchRegex treats the pattern as an RE2 regular expression that
	// may match anywhere in the target. Use ^ and $ to anchor.
	MatchRegex
)

// String returns "exact", "wildcard", or "regex".
func (m SearchMethod) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchWildcard:
		return "wildcard"
	case MatchRegex:
		return "regex"
	default:
		return fmt.Sprintf("SearchMethod(%d)", int(m))
	}
}

// ParseSearchMethod parses the names returned by String.
func ParseSearchMethod(name string) (SearchMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "exact", "":
		return MatchExact, nil
	case "wildcard", "glob":
		return MatchWildcard, nil
	case "regex", "regexp":
		return MatchRegex, nil
	default:
		return 0, fmt.Errorf("%w: %q (want exact, wildcard, or regex)", ErrUnsupportedMethod, name)
	}
}

// matcher reports whether a target matches a compiled pattern.
type matcher func(target string) bool

func compileMatcher(pattern string, method SearchMethod) (matcher, error) {
	switch method {
	case MatchExact:
		return func(target string) bool {
			return strings.EqualFold(target, pattern)
		}, nil

	case MatchWildcard:
		compiled, err := glob.Compile(quoteWildcard(strings.ToLower(pattern)))
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Method: method, Err: err}
		}
		return func(target string) bool {
			return compiled.Match(strings.ToLower(target))
		}, nil

	case MatchRegex:
		compiled, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Method: method, Err: err}
		}
		return compiled.MatchString, nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMethod, method)
	}
}

// quoteWildcard escapes every glob metacharacter in pattern except '*'
// and '?'.
func quoteWildcard(pattern string) string {
	var quoted strings.Builder
	for _, r := range pattern {
		switch r {
		case '*', '?':
			quoted.WriteRune(r)
		default:
			quoted.WriteString(glob.QuoteMeta(string(r)))
		}
	}
	return quoted.String()
}
