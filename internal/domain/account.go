package domain

import "time"

// Account is a registered user together with its credential hash.
type Account struct {
	User         User
	PasswordHash string
	CreatedAt    time.Time
}
