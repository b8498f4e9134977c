package jukebox

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/ui"
	"github.com/osa030/venuebox/internal/domain/user"
)

// Session is an authenticated user session.
type Session struct {
	Token string
	User  user.User
}

// Register creates an account and logs it in.
func (m *Manager) Register(name, email, password string) (Session, error) {
	if m.closed() {
		return Session{}, ErrClosed
	}
	token, u, err := m.accounts.Register(name, email, password)
	if err != nil {
		return Session{}, err
	}
	m.openUI(token, u)
	zlog.Info().Msgf("user registered: user_id=%s name=%s", u.ID, u.Name)
	return Session{Token: token, User: u}, nil
}

// Login opens a session for a known email.
func (m *Manager) Login(email, password string) (Session, error) {
	if m.closed() {
		return Session{}, ErrClosed
	}
	token, u, err := m.accounts.Login(email, password)
	if err != nil {
		zlog.Warn().Msgf("login rejected: email=%s", email)
		return Session{}, err
	}
	m.openUI(token, u)
	zlog.Info().Msgf("user logged in: user_id=%s admin=%t", u.ID, u.IsAdmin)
	return Session{Token: token, User: u}, nil
}

// Logout closes the session and its user menu. Unknown tokens are ignored.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	if state, ok := m.sessions[token]; ok {
		state.CloseUserMenu()
		delete(m.sessions, token)
	}
	m.mu.Unlock()

	m.accounts.Logout(token)
}

// Me returns the current user of a session.
func (m *Manager) Me(token string) (user.User, error) {
	return m.accounts.Authenticate(token)
}

// UI returns the UI toggles of a session.
func (m *Manager) UI(token string) (*ui.State, error) {
	u, err := m.accounts.Authenticate(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[token]
	if !ok {
		state = ui.New(u.IsAdmin)
		m.sessions[token] = state
	}
	return state, nil
}

func (m *Manager) openUI(token string, u user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = ui.New(u.IsAdmin)
}

// requireAdmin authenticates token and checks the admin flag.
func (m *Manager) requireAdmin(token string) (user.User, error) {
	u, err := m.accounts.Authenticate(token)
	if err != nil {
		return user.User{}, err
	}
	if !u.IsAdmin {
		zlog.Warn().Msgf("admin operation denied: user_id=%s", u.ID)
		return user.User{}, ErrAdminOnly
	}
	return u, nil
}
