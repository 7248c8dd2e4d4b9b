// Package wikilink parses Obsidian wiki link targets, tokenizes [[...]]
// syntax and builds hyperlinks from parsed targets.
package wikilink

import (
	"fmt"
	"strings"

	"github.com/starford/wikimark/internal/apperr"
)

// AnchorKind distinguishes heading anchors (#) from block anchors (^).
type AnchorKind uint8

const (
	AnchorNone AnchorKind = iota
	AnchorHeading
	AnchorBlock
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorHeading:
		return "heading"
	case AnchorBlock:
		return "block"
	}
	return "none"
}

// Target is a parsed wiki link value.
type Target struct {
	// Page is the part before the anchor separator. Empty for
	// same-document links such as [[#Heading]].
	Page       string
	Anchor     string
	AnchorKind AnchorKind
	Alias      string
	// Value is the raw value the target was parsed from.
	Value string
}

// HasAnchor reports whether the target carries a heading or block anchor.
func (t Target) HasAnchor() bool { return t.AnchorKind != AnchorNone }

// ParseTarget splits a wiki link value into page and anchor. The first of
// '#' or '^' separates them. It fails only for blank input.
func ParseTarget(value string) (Target, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Target{}, false
	}

	i := strings.IndexAny(trimmed, "#^")
	if i < 0 {
		return Target{Page: trimmed, Value: value}, true
	}

	kind := AnchorHeading
	if trimmed[i] == '^' {
		kind = AnchorBlock
	}
	return Target{
		Page:       strings.TrimSpace(trimmed[:i]),
		Anchor:     strings.TrimSpace(trimmed[i+1:]),
		AnchorKind: kind,
		Value:      value,
	}, true
}

// MustParseTarget is ParseTarget with an error for callers that surface
// failures to users.
func MustParseTarget(value string) (Target, error) {
	t, ok := ParseTarget(value)
	if !ok {
		return Target{}, fmt.Errorf("wikilink: parse %q: %w", value, apperr.ErrEmptyTarget)
	}
	return t, nil
}
