package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-wbs-tracker/internal/model"
	"go-wbs-tracker/pkg/apierror"
)

// UserStore is the credential store surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, username string, passwordHash string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
}

// TokenStore persists refresh tokens. Lookup must treat expired rows
// as absent.
type TokenStore interface {
	Store(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type AuthService struct {
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      UserStore
	tokens     TokenStore
}

func NewAuthService(jwtSecret string, accessTTL time.Duration, refreshTTL time.Duration, users UserStore, tokens TokenStore) (*AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &AuthService{
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		users:      users,
		tokens:     tokens,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, password string) (model.PublicUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.PublicUser{}, apierror.BadRequest("Username and password required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.PublicUser{}, err
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		return model.PublicUser{}, err
	}

	return model.PublicUser{ID: user.ID, Username: user.Username}, nil
}

// Login verifies credentials and issues a short-lived access token plus
// a persisted refresh token. Unknown user and wrong password fail the
// same way so the response never reveals which it was.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}

	if !verifyPassword(password, user.PasswordHash) {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	accessToken, err := s.signAccessToken(user, now)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := s.signToken(jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"typ": "refresh",
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.tokens.Store(ctx, refreshToken, user.ID, now.Add(s.refreshTTL)); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh mints a new access token for a live refresh token. The
// refresh token is not rotated. Signature, store presence and stored
// expiry all gate the same way: an invalid token of any kind is
// rejected identically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return "", model.ErrInvalidToken
	}

	claimedID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", model.ErrInvalidToken
	}

	ownerID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return "", model.ErrInvalidToken
		}
		return "", err
	}
	if ownerID != claimedID {
		return "", model.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", model.ErrInvalidToken
		}
		return "", err
	}

	return s.signAccessToken(user, time.Now().UTC())
}

// Logout revokes the refresh token. Deleting an already-absent token
// still succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Delete(ctx, refreshToken)
}

// Authenticate verifies an access token without touching the store and
// returns the identity it asserts.
func (s *AuthService) Authenticate(accessToken string) (*model.AuthClaims, error) {
	claims, err := s.parseToken(accessToken, "access")
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	return &model.AuthClaims{UserID: userID, Username: claims.Username}, nil
}

// SweepExpiredTokens deletes refresh tokens past their stored expiry.
// Expiry is already checked lazily on use; the sweep only keeps the
// table from accumulating dead rows.
func (s *AuthService) SweepExpiredTokens(ctx context.Context) {
	removed, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		slog.Error("refresh token sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("swept expired refresh tokens", "removed", removed)
	}
}

type tokenClaims struct {
	Username string `json:"username,omitempty"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

func (s *AuthService) signAccessToken(user model.User, now time.Time) (string, error) {
	return s.signToken(jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"typ":      "access",
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	})
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString string, expectedType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	if claims.Type != expectedType || claims.Subject == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}
