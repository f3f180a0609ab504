package icontasks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrInvalidMarker indicates a rule marker is not a single usable character.
	ErrInvalidMarker = errors.New("icontasks: marker must be a single non-space character other than x, [ or ]")
	// ErrDuplicateMarker indicates two rules share the same marker.
	ErrDuplicateMarker = errors.New("icontasks: duplicate marker")
)

// Rule maps a marker character to the markup emitted for its unchecked and
// checked forms and the class added to the enclosing list item.
type Rule struct {
	Marker    string `json:"marker" yaml:"marker"`
	Unchecked string `json:"unchecked" yaml:"unchecked"`
	Checked   string `json:"checked" yaml:"checked"`
	ItemClass string `json:"item_class" yaml:"item_class"`
}

// RuleSet is an ordered, immutable collection of rules. Declaration order is
// the match order. The zero value is an empty set.
type RuleSet struct {
	rules []Rule
	index map[string]int
}

// DefaultRules returns the built-in marker rules (#, @, !).
func DefaultRules() []Rule {
	return []Rule{
		{
			Marker:    "#",
			Unchecked: `<i class="bi bi-circle text-muted"></i>`,
			Checked:   `<i class="bi bi-check-circle-fill text-success"></i>`,
			ItemClass: "task-list-item icon-task-item",
		},
		{
			Marker:    "@",
			Unchecked: `<i class="bi bi-exclamation-circle text-warning"></i>`,
			Checked:   `<i class="bi bi-check-circle-fill text-warning"></i>`,
			ItemClass: "task-list-item icon-task-item icon-task-important",
		},
		{
			Marker:    "!",
			Unchecked: `<i class="bi bi-exclamation-triangle text-danger"></i>`,
			Checked:   `<i class="bi bi-check-circle-fill text-danger"></i>`,
			ItemClass: "task-list-item icon-task-item icon-task-critical",
		},
	}
}

// DefaultRuleSet returns the built-in rule set.
func DefaultRuleSet() RuleSet {
	return MustRuleSet(DefaultRules()...)
}

// NewRuleSet validates the supplied rules and returns them as a RuleSet.
func NewRuleSet(rules ...Rule) (RuleSet, error) {
	set := RuleSet{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, rule := range rules {
		if err := validateMarker(rule.Marker); err != nil {
			return RuleSet{}, err
		}
		if _, ok := set.index[rule.Marker]; ok {
			return RuleSet{}, fmt.Errorf("%w: %q", ErrDuplicateMarker, rule.Marker)
		}
		rule.ItemClass = strings.Join(strings.Fields(rule.ItemClass), " ")
		set.index[rule.Marker] = len(set.rules)
		set.rules = append(set.rules, rule)
	}
	return set, nil
}

// MustRuleSet is like NewRuleSet but panics on invalid input. Intended for
// package level defaults.
func MustRuleSet(rules ...Rule) RuleSet {
	set, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return set
}

// RuleSetFromMap builds a RuleSet from a marker keyed map. Map keys win over
// any Marker set on the value. Keys are ordered lexically since maps carry no
// declaration order.
func RuleSetFromMap(rules map[string]Rule) (RuleSet, error) {
	keys := make([]string, 0, len(rules))
	for key := range rules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ordered := make([]Rule, 0, len(keys))
	for _, key := range keys {
		rule := rules[key]
		rule.Marker = key
		ordered = append(ordered, rule)
	}
	return NewRuleSet(ordered...)
}

// Len reports the number of rules.
func (s RuleSet) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the rules in declaration order.
func (s RuleSet) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Lookup returns the rule registered for marker.
func (s RuleSet) Lookup(marker string) (Rule, bool) {
	idx, ok := s.index[marker]
	if !ok {
		return Rule{}, false
	}
	return s.rules[idx], true
}

// Override returns a new RuleSet where rules sharing a marker with an existing
// rule replace it in place and unknown markers are appended.
func (s RuleSet) Override(rules ...Rule) (RuleSet, error) {
	merged := s.Rules()
	for _, rule := range rules {
		if idx, ok := s.index[rule.Marker]; ok {
			merged[idx] = rule
			continue
		}
		merged = append(merged, rule)
	}
	return NewRuleSet(merged...)
}

// match reports the rule, checked state and prefix length matched at the start
// of text. Rules are tried in declaration order; for each rule the checked form
// is tried before the unchecked one.
func (s RuleSet) match(text []byte) (Rule, bool, int, bool) {
	if len(text) < 4 || text[0] != '[' {
		return Rule{}, false, 0, false
	}
	for _, rule := range s.rules {
		body := text[1:]
		if !hasPrefix(body, rule.Marker) {
			continue
		}
		rest := body[len(rule.Marker):]
		if len(rest) >= 2 && (rest[0] == 'x' || rest[0] == 'X') && rest[1] == ']' {
			if n := spaceWidth(rest[2:]); n > 0 {
				return rule, true, 1 + len(rule.Marker) + 2 + n, true
			}
		}
		if len(rest) >= 1 && rest[0] == ']' {
			if n := spaceWidth(rest[1:]); n > 0 {
				return rule, false, 1 + len(rule.Marker) + 1 + n, true
			}
		}
	}
	return Rule{}, false, 0, false
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

// spaceWidth returns the byte width of the leading whitespace rune, or zero.
func spaceWidth(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError || !unicode.IsSpace(r) {
		return 0
	}
	return size
}

func validateMarker(marker string) error {
	if utf8.RuneCountInString(marker) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidMarker, marker)
	}
	r, _ := utf8.DecodeRuneInString(marker)
	switch {
	case r == utf8.RuneError, unicode.IsSpace(r), r == 'x', r == 'X', r == '[', r == ']':
		return fmt.Errorf("%w: %q", ErrInvalidMarker, marker)
	}
	return nil
}
