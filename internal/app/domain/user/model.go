package user

import "time"

// Account is a registered storefront user. SessionID is empty while the user
// is logged out; at most one session is active per account.
type Account struct {
	Username     string
	Email        string
	PasswordHash string
	SessionID    string
	CreatedAt    time.Time
}
