package builder

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"
)

// FlagState and Permission mirror the declaration-time vocabulary used by
// the declaration/value cache (§4.10, §12): a flag's default is
// Disabled/ReadWrite until an assign_value call overrides it.
type FlagState int

const (
	Disabled FlagState = iota
	Enabled
)

type Permission int

const (
	ReadWrite Permission = iota
	ReadOnly
)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

func validIdent(s string) bool { return identPattern.MatchString(s) }

// Tracepoint is one recorded assignment in a flag's audit trail.
type Tracepoint struct {
	Source     string
	State      FlagState
	Permission Permission
}

// Item is one flag's accumulated declaration and current value, with its
// full assignment history.
type Item struct {
	Package     string
	Name        string
	Description string
	State       FlagState
	Permission  Permission
	Trace       []Tracepoint
}

// DeclCache accumulates flag declarations and value assignments for a
// single package during a build, keyed by flag name (§4.10). BuildID
// identifies the build session in the audit trace (§12).
type DeclCache struct {
	Package string
	BuildID string

	items  []Item
	byName map[string]int
}

// NewDeclCache creates a cache for package, rejecting an invalid package
// identifier.
func NewDeclCache(pkg string) (*DeclCache, error) {
	if !validIdent(pkg) {
		return nil, fmt.Errorf("invalid package identifier %q", pkg)
	}
	return &DeclCache{
		Package: pkg,
		BuildID: uuid.NewString(),
		byName:  make(map[string]int),
	}, nil
}

// Declare registers a new flag in the cache. Duplicate names and invalid
// identifiers are rejected; description must be non-empty.
func (c *DeclCache) Declare(source, name, description string) error {
	if !validIdent(name) {
		return fmt.Errorf("invalid flag name identifier %q", name)
	}
	if description == "" {
		return fmt.Errorf("empty description for flag %q", name)
	}
	if _, exists := c.byName[name]; exists {
		return fmt.Errorf("flag %q already declared (from %s)", name, source)
	}

	item := Item{
		Package:     c.Package,
		Name:        name,
		Description: description,
		State:       Disabled,
		Permission:  ReadWrite,
		Trace:       []Tracepoint{{Source: source, State: Disabled, Permission: ReadWrite}},
	}
	c.byName[name] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// AssignValue overrides a previously-declared flag's state and permission,
// rejecting unknown names and a package mismatch, and appending the
// assignment to the flag's audit trail.
func (c *DeclCache) AssignValue(source, pkg, name string, state FlagState, permission Permission) error {
	if pkg != c.Package {
		return fmt.Errorf("flag %q assigned from %s: expected package %s, got %s", name, source, c.Package, pkg)
	}
	idx, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("flag %q not declared (assignment from %s)", name, source)
	}
	item := &c.items[idx]
	item.State = state
	item.Permission = permission
	item.Trace = append(item.Trace, Tracepoint{Source: source, State: state, Permission: permission})
	return nil
}

// Build returns a snapshot of the cache's items sorted by flag name. Every
// downstream consumer requires a sorted snapshot; readers re-verify this on
// load (§4.10, testable property #5).
func (c *DeclCache) Build() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// VerifySorted reports whether items is sorted by name, the check a loader
// of a persisted snapshot must perform before trusting it.
func VerifySorted(items []Item) bool {
	return sort.SliceIsSorted(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}
