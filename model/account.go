package model

import "time"

// Account is the only persisted entity. PasswordHash is empty for accounts
// created implicitly as a transfer destination; those can never log in.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanAuthenticate reports whether the account has a credential to verify against.
func (a *Account) CanAuthenticate() bool {
	return a.PasswordHash != ""
}
