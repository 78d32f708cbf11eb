package domain

import "time"

// TokenPair holds the two signed credentials issued on login or signup.
// Pairs are immutable once issued; rotation supersedes, it never mutates.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session is the result of a successful authentication: the public user
// projection plus the freshly issued token pair.
type Session struct {
	User   PublicUser
	Tokens TokenPair
}
