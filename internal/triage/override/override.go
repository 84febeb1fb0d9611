package override

import (
	"fmt"
	"regexp"
)

// Outcome is the forced classification a matched pattern implies.
type Outcome string

const (
	// ForceMaterial pins routine=false for every ticker on the headline.
	ForceMaterial Outcome = "force_material"
	// ForceRoutine pins routine=true for every ticker on the headline.
	ForceRoutine Outcome = "force_routine"
	// ForceNonOpinion suppresses an opinion-score rejection. A far-future
	// forecast rejection is never suppressed.
	ForceNonOpinion Outcome = "force_non_opinion"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case ForceMaterial, ForceRoutine, ForceNonOpinion:
		return true
	}
	return false
}

// Entry is an uncompiled pattern definition, either built-in or supplied
// through configuration.
type Entry struct {
	Category string
	Outcome  Outcome
	Pattern  string
}

// Pattern is a compiled registry entry.
type Pattern struct {
	Category string
	Outcome  Outcome
	Pattern  string
	Builtin  bool
	re       *regexp.Regexp
}

// Match is one triggered category for a headline.
type Match struct {
	Category string
	Outcome  Outcome
}

// Registry holds the compiled override patterns. It is not mutated after
// construction and is safe to share across concurrent evaluations.
type Registry struct {
	patterns []Pattern
}

// NewRegistry compiles the built-in rules plus extra entries from
// configuration. All patterns match case-insensitively. An unknown outcome
// or a pattern that does not compile fails construction.
func NewRegistry(includeBuiltins bool, extras []Entry) (*Registry, error) {
	var patterns []Pattern
	if includeBuiltins {
		for _, e := range builtinRules() {
			p, err := compileEntry(e, true)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, p)
		}
	}
	for _, e := range extras {
		p, err := compileEntry(e, false)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return &Registry{patterns: patterns}, nil
}

func compileEntry(e Entry, builtin bool) (Pattern, error) {
	if e.Category == "" {
		return Pattern{}, fmt.Errorf("override pattern with empty category")
	}
	if !e.Outcome.Valid() {
		return Pattern{}, fmt.Errorf("override %q: unknown outcome %q", e.Category, e.Outcome)
	}
	re, err := regexp.Compile("(?i)" + e.Pattern)
	if err != nil {
		return Pattern{}, fmt.Errorf("override %q: invalid pattern: %w", e.Category, err)
	}
	return Pattern{
		Category: e.Category,
		Outcome:  e.Outcome,
		Pattern:  e.Pattern,
		Builtin:  builtin,
		re:       re,
	}, nil
}

// Evaluate returns every matched category in registration order. All
// applicable categories are returned, not just the first.
func (r *Registry) Evaluate(text string) []Match {
	var matches []Match
	for _, p := range r.patterns {
		if p.re.MatchString(text) {
			matches = append(matches, Match{Category: p.Category, Outcome: p.Outcome})
		}
	}
	return matches
}

// Patterns returns a copy of the registered patterns for introspection.
func (r *Registry) Patterns() []Pattern {
	out := make([]Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// HasOutcome reports whether any match carries the given outcome.
func HasOutcome(matches []Match, outcome Outcome) bool {
	for _, m := range matches {
		if m.Outcome == outcome {
			return true
		}
	}
	return false
}

// Categories returns the matched category names in order.
func Categories(matches []Match) []string {
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Category)
	}
	return out
}
