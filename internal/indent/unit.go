package indent

import (
	"fmt"
	"strings"
)

// Kind selects the indentation character.
type Kind uint8

const (
	Spaces Kind = iota
	Tab
)

// DefaultWidth is used when a space unit carries no width.
const DefaultWidth = 4

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Spaces:
		return "spaces"
	case Tab:
		return "tab"
	default:
		return "unknown"
	}
}

// ParseKind converts a flag or config value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spaces", "space", "":
		return Spaces, nil
	case "tab", "tabs":
		return Tab, nil
	default:
		return Spaces, fmt.Errorf("invalid indent style: %q (expected: spaces|tab)", s)
	}
}

// Unit is one level of indentation: Width spaces or a single tab.
type Unit struct {
	Kind  Kind
	Width int
}

// SpacesUnit returns a unit of n spaces.
func SpacesUnit(n int) Unit { return Unit{Kind: Spaces, Width: n} }

// TabUnit returns a single-tab unit.
func TabUnit() Unit { return Unit{Kind: Tab, Width: 1} }

// Validate reports a space unit without a positive width.
func (u Unit) Validate() error {
	switch u.Kind {
	case Spaces:
		if u.Width < 1 {
			return fmt.Errorf("indent width must be at least 1, got %d", u.Width)
		}
	case Tab:
	default:
		return fmt.Errorf("invalid indent kind %d", u.Kind)
	}
	return nil
}

// WithDefaults replaces a non-positive space width with DefaultWidth.
func (u Unit) WithDefaults() Unit {
	if u.Kind == Spaces && u.Width < 1 {
		u.Width = DefaultWidth
	}
	if u.Kind == Tab {
		u.Width = 1
	}
	return u
}

// String returns the text of a single level.
func (u Unit) String() string {
	u = u.WithDefaults()
	if u.Kind == Tab {
		return "\t"
	}
	return strings.Repeat(" ", u.Width)
}
