package styles

import (
	"errors"
	"fmt"
	"strings"
)

// Style is a style identifier from the closed set below.
type Style string

const (
	Pixar   Style = "pixar"
	Cartoon Style = "cartoon"
	Comic   Style = "comic"
	Ghibli  Style = "ghibli"
	Oil     Style = "oil"
	Sketch  Style = "sketch"
)

// ErrUnknownStyle is returned for identifiers outside the closed set.
var ErrUnknownStyle = errors.New("styles: unknown style")

// Family identifies which backend kind serves a style.
type Family int

const (
	FamilyGenerative Family = iota + 1
	FamilyNetwork
	FamilyClassical
)

func (f Family) String() string {
	switch f {
	case FamilyGenerative:
		return "generative"
	case FamilyNetwork:
		return "network"
	case FamilyClassical:
		return "classical"
	default:
		return "unknown"
	}
}

var families = map[Style]Family{
	Pixar:   FamilyGenerative,
	Cartoon: FamilyGenerative,
	Comic:   FamilyGenerative,
	Ghibli:  FamilyNetwork,
	Oil:     FamilyClassical,
	Sketch:  FamilyClassical,
}

// All returns every style in a stable order.
func All() []Style {
	return []Style{Pixar, Cartoon, Comic, Ghibli, Oil, Sketch}
}

// Parse lower-cases and trims s and checks it against the closed set.
func Parse(s string) (Style, error) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := families[st]; !ok {
		return "", fmt.Errorf("%w '%s'", ErrUnknownStyle, s)
	}
	return st, nil
}

// Valid reports whether s is in the closed set.
func (s Style) Valid() bool {
	_, ok := families[s]
	return ok
}

// Family returns the backend family for s, or 0 if s is not valid.
func (s Style) Family() Family {
	return families[s]
}

// NeedsModel reports whether s is served by a loaded handle.
func (s Style) NeedsModel() bool {
	f := s.Family()
	return f == FamilyGenerative || f == FamilyNetwork
}

func (s Style) String() string { return string(s) }
