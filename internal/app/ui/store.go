package ui

import (
	"sync"

	"github.com/osa030/venuebox/internal/domain/failure"
)

// ErrAdminOnly is returned when a non-admin session selects the admin view.
var ErrAdminOnly = failure.Mark("admin view requires an admin user", failure.ErrPermissionDenied)

// State holds the toggles of one session with thread-safe access.
type State struct {
	mu sync.RWMutex

	admin          bool
	playerExpanded bool
	userMenuOpen   bool
	activeView     View
}

// New creates the default state: browse view, player collapsed, menu closed.
func New(admin bool) *State {
	return &State{
		admin:      admin,
		activeView: ViewBrowse,
	}
}

// Snapshot is a copy of the toggles.
type Snapshot struct {
	PlayerExpanded bool
	UserMenuOpen   bool
	ActiveView     View
}

// Snapshot returns the current toggles.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		PlayerExpanded: s.playerExpanded,
		UserMenuOpen:   s.userMenuOpen,
		ActiveView:     s.activeView,
	}
}

// TogglePlayerExpanded flips the now-playing panel and returns the new value.
func (s *State) TogglePlayerExpanded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerExpanded = !s.playerExpanded
	return s.playerExpanded
}

// ToggleUserMenu flips the user menu and returns the new value.
func (s *State) ToggleUserMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMenuOpen = !s.userMenuOpen
	return s.userMenuOpen
}

// CloseUserMenu closes the user menu.
func (s *State) CloseUserMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMenuOpen = false
}

// SetActiveView switches the active view. The admin view requires an admin session.
func (s *State) SetActiveView(v View) error {
	if v == ViewAdmin && !s.admin {
		return ErrAdminOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeView = v
	return nil
}

// ActiveView returns the active view.
func (s *State) ActiveView() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeView
}
