// Package account provides the user registry and mock login sessions.
package account

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/domain/user"
)

var (
	ErrUserNotFound        = failure.Mark("user not found", failure.ErrNotFound)
	ErrEmailTaken          = failure.Mark("email already registered", failure.ErrInvalidArgument)
	ErrInvalidCredentials  = failure.Mark("invalid credentials", failure.ErrUnauthenticated)
	ErrInvalidSession      = failure.Mark("invalid or expired session", failure.ErrUnauthenticated)
	ErrInsufficientCredits = failure.Mark("insufficient credits", failure.ErrInvalidState)
	ErrInvalidAmount       = failure.Mark("amount must be positive", failure.ErrInvalidArgument)
)

// Registry manages users and their login sessions with thread-safe access.
type Registry struct {
	mu       sync.RWMutex
	users    map[string]*user.User
	byEmail  map[string]string // lower-cased email -> user ID
	sessions map[string]string // token -> user ID
	validate *validator.Validate
}

// NewRegistry creates a registry seeded with users.
func NewRegistry(users []user.User) (*Registry, error) {
	r := &Registry{
		users:    make(map[string]*user.User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]string),
		validate: validator.New(),
	}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		if u.JoinedAt.IsZero() {
			u.JoinedAt = time.Now()
		}
		if err := r.validate.Struct(u); err != nil {
			return nil, errors.Wrapf(err, "invalid user %q", u.Email)
		}
		if _, exists := r.users[u.ID]; exists {
			return nil, errors.Newf("duplicate user id %q", u.ID)
		}
		key := emailKey(u.Email)
		if _, exists := r.byEmail[key]; exists {
			return nil, errors.Wrapf(ErrEmailTaken, "user %q", u.Email)
		}
		stored := u
		r.users[u.ID] = &stored
		r.byEmail[key] = u.ID
	}
	return r, nil
}

// Register creates a new user and logs them in, returning the session token.
func (r *Registry) Register(name, email, password string) (string, user.User, error) {
	if password == "" {
		return "", user.User{}, errors.Mark(errors.New("password is required"), failure.ErrInvalidArgument)
	}

	u := user.New(uuid.New().String(), strings.TrimSpace(name), strings.TrimSpace(email))
	if err := r.validate.Struct(u); err != nil {
		return "", user.User{}, errors.Mark(errors.Wrap(err, "invalid registration"), failure.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return "", user.User{}, ErrEmailTaken
	}
	r.users[u.ID] = u
	r.byEmail[key] = u.ID

	token := r.openSessionLocked(u.ID)
	return token, *u, nil
}

// Login opens a session for the user with the given email.
// Passwords are not verified; any non-empty password is accepted.
func (r *Registry) Login(email, password string) (string, user.User, error) {
	if password == "" {
		return "", user.User{}, ErrInvalidCredentials
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return "", user.User{}, ErrInvalidCredentials
	}
	token := r.openSessionLocked(id)
	return token, *r.users[id], nil
}

// Logout closes the session. Unknown tokens are ignored.
func (r *Registry) Logout(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Authenticate resolves a session token to its user.
func (r *Registry) Authenticate(token string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sessions[token]
	if !ok {
		return user.User{}, ErrInvalidSession
	}
	u, ok := r.users[id]
	if !ok {
		return user.User{}, ErrInvalidSession
	}
	return *u, nil
}

// Get retrieves a user by ID.
func (r *Registry) Get(userID string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return user.User{}, ErrUserNotFound
	}
	return *u, nil
}

// All returns all users sorted by name.
func (r *Registry) All() []user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Count returns the number of users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// AdjustCredits adds amount (which may be negative) to a user's credits.
// The balance is clamped at zero, so the returned applied delta can be
// smaller in magnitude than amount.
func (r *Registry) AdjustCredits(userID string, amount money.Money) (user.User, money.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return user.User{}, 0, ErrUserNotFound
	}
	before := u.Credits
	u.Credit(amount)
	return *u, u.Credits - before, nil
}

// Charge debits amount from a user's credits.
func (r *Registry) Charge(userID string, amount money.Money) (user.User, error) {
	if amount <= 0 {
		return user.User{}, ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return user.User{}, ErrUserNotFound
	}
	if !u.Debit(amount) {
		return user.User{}, errors.Wrapf(ErrInsufficientCredits, "balance %s, need %s", u.Credits, amount)
	}
	return *u, nil
}

// Refund returns a previously charged amount to a user's credits.
func (r *Registry) Refund(userID string, amount money.Money) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	_, _, err := r.AdjustCredits(userID, amount)
	return err
}

// openSessionLocked creates a session token for userID.
// Must be called with r.mu held.
func (r *Registry) openSessionLocked(userID string) string {
	token := uuid.New().String()
	r.sessions[token] = userID
	return token
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
