// Package user provides the User domain entity.
package user

import (
	"time"

	"github.com/osa030/venuebox/internal/domain/money"
)

// User represents a venue patron or administrator.
type User struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name" validate:"required"`
	Email     string      `yaml:"email" validate:"required,email"`
	AvatarURL string      `yaml:"avatar,omitempty" validate:"omitempty,url"`
	Credits   money.Money `yaml:"credits" validate:"gte=0"`
	IsAdmin   bool        `yaml:"is_admin"`
	JoinedAt  time.Time   `yaml:"-"`
}

// New creates a new user with no credits.
func New(id, name, email string) *User {
	return &User{
		ID:       id,
		Name:     name,
		Email:    email,
		Credits:  0,
		IsAdmin:  false,
		JoinedAt: time.Now(),
	}
}

// CanAfford reports whether the user's credits cover amount.
func (u *User) CanAfford(amount money.Money) bool {
	return u.Credits >= amount
}

// Debit removes amount from the user's credits.
// Returns false, leaving credits unchanged, if the balance is insufficient.
func (u *User) Debit(amount money.Money) bool {
	if amount < 0 || !u.CanAfford(amount) {
		return false
	}
	u.Credits -= amount
	return true
}

// Credit adds amount to the user's credits. The balance never drops below zero.
func (u *User) Credit(amount money.Money) {
	u.Credits += amount
	if u.Credits < 0 {
		u.Credits = 0
	}
}
