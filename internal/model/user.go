package model

import "time"

type User struct {
	ID           int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// PublicUser is the registration response shape: never carries the hash.
type PublicUser struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
}

// AuthClaims is the identity embedded in an access token.
type AuthClaims struct {
	UserID   int64
	Username string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
