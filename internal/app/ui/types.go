// Package ui provides per-session presentation toggles.
package ui

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/venuebox/internal/domain/failure"
)

// View represents the active top-level page.
type View int

const (
	ViewBrowse  View = iota // Song catalog
	ViewQueue               // Request queue
	ViewProfile             // Account, credits and transactions
	ViewAdmin               // Admin console
)

// String returns the string representation of the view.
func (v View) String() string {
	switch v {
	case ViewBrowse:
		return "browse"
	case ViewQueue:
		return "queue"
	case ViewProfile:
		return "profile"
	case ViewAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseView parses a view name.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "browse":
		return ViewBrowse, nil
	case "queue":
		return ViewQueue, nil
	case "profile":
		return ViewProfile, nil
	case "admin":
		return ViewAdmin, nil
	default:
		return ViewBrowse, errors.Mark(errors.Newf("unknown view %q", s), failure.ErrInvalidArgument)
	}
}
