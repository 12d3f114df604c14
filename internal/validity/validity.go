// Package validity decides which packages an item may reference.
package validity

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for a malformed package pattern.
var ErrBadPattern = errors.New("invalid package pattern")

// Set holds installed package names and glob patterns ("com.example.*").
// An empty set accepts every package.
type Set struct {
	installed map[string]struct{}
	patterns  []string
}

// New builds a set from package names and patterns.
func New(installed, patterns []string) (*Set, error) {
	s := &Set{installed: make(map[string]struct{}, len(installed))}
	for _, pkg := range installed {
		s.Add(pkg)
	}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// Add marks pkg as installed.
func (s *Set) Add(pkg string) {
	if pkg = strings.TrimSpace(pkg); pkg != "" {
		s.installed[pkg] = struct{}{}
	}
}

// AllowsAll reports whether the set is empty and so accepts everything.
func (s *Set) AllowsAll() bool {
	return len(s.installed) == 0 && len(s.patterns) == 0
}

// Contains reports whether pkg is installed or matches a pattern.
// The empty package name is never valid.
func (s *Set) Contains(pkg string) bool {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return false
	}
	if s.AllowsAll() {
		return true
	}
	if _, ok := s.installed[pkg]; ok {
		return true
	}
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, pkg); ok {
			return true
		}
	}
	return false
}

// Packages returns the installed package names, sorted.
func (s *Set) Packages() []string {
	out := make([]string, 0, len(s.installed))
	for pkg := range s.installed {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}
