// Package pattern resolves the matcher used by print and mark from either a raw
// regular expression or a named pattern or pattern group.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ssargent/sq/pkg/config"
)

// Errors
var (
	ErrNoPattern        = errors.New("a pattern is required (--regex or --pattern)")
	ErrAmbiguousPattern = errors.New("--regex and --pattern are mutually exclusive")
	ErrUnknownPattern   = errors.New("unknown pattern")
)

// Kind distinguishes single patterns from groups
type Kind string

const (
	KindPattern Kind = "pattern"
	KindGroup   Kind = "group"
)

// Source tells where an entry was defined
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceConfig  Source = "config"
)

// Entry describes one name known to the library
type Entry struct {
	Name        string   `json:"name"`
	Kind        Kind     `json:"kind"`
	Source      Source   `json:"source"`
	Pattern     string   `json:"pattern,omitempty"`
	Members     []string `json:"members,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Library holds named patterns and groups. Configured entries replace built-in
// entries of the same name.
type Library struct {
	patterns map[string]config.Pattern
	groups   map[string][]string
	sources  map[string]Source
}

// NewLibrary creates a library from the built-ins plus configured entries.
// cfg may be nil.
func NewLibrary(cfg *config.Config) *Library {
	lib := &Library{
		patterns: builtinPatterns(),
		groups:   builtinGroups(),
		sources:  make(map[string]Source),
	}
	for name := range lib.patterns {
		lib.sources[name] = SourceBuiltin
	}
	for name := range lib.groups {
		lib.sources[name] = SourceBuiltin
	}

	if cfg == nil {
		return lib
	}
	for name, p := range cfg.Patterns {
		delete(lib.groups, name)
		lib.patterns[name] = p
		lib.sources[name] = SourceConfig
	}
	for name, members := range cfg.PatternGroups {
		delete(lib.patterns, name)
		lib.groups[name] = members
		lib.sources[name] = SourceConfig
	}
	return lib
}

// Resolve compiles exactly one of a raw regular expression or a named entry
func (l *Library) Resolve(regex, name string) (*regexp.Regexp, error) {
	switch {
	case regex == "" && name == "":
		return nil, ErrNoPattern
	case regex != "" && name != "":
		return nil, ErrAmbiguousPattern
	case regex != "":
		re, err := regexp.Compile(regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", regex, err)
		}
		return re, nil
	default:
		return l.Compile(name)
	}
}

// Compile compiles a named pattern or group
func (l *Library) Compile(name string) (*regexp.Regexp, error) {
	expr, err := l.Expression(name)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", name, err)
	}
	return re, nil
}

// Expression returns the regular expression source for a name. A group becomes
// one alternation of its members so a single left-to-right pass still yields
// non-overlapping matches.
func (l *Library) Expression(name string) (string, error) {
	if p, ok := l.patterns[name]; ok {
		return p.Pattern, nil
	}

	members, ok := l.groups[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}

	parts := make([]string, 0, len(members))
	for _, member := range members {
		p, ok := l.patterns[member]
		if !ok {
			return "", fmt.Errorf("%w: %q in group %q", ErrUnknownPattern, member, name)
		}
		parts = append(parts, "(?:"+p.Pattern+")")
	}
	return strings.Join(parts, "|"), nil
}

// List returns every entry, patterns before groups, each sorted by name
func (l *Library) List() []Entry {
	entries := make([]Entry, 0, len(l.patterns)+len(l.groups))
	for name, p := range l.patterns {
		entries = append(entries, Entry{
			Name:        name,
			Kind:        KindPattern,
			Source:      l.sources[name],
			Pattern:     p.Pattern,
			Description: p.Description,
		})
	}
	for name, members := range l.groups {
		entries = append(entries, Entry{
			Name:        name,
			Kind:        KindGroup,
			Source:      l.sources[name],
			Members:     append([]string(nil), members...),
			Description: strings.Join(members, ", "),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == KindPattern
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
