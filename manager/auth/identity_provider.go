package auth

import (
	"errors"
	"net/http"
	"rentdesk/manager/schema"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	// Login failures are deliberately uniform: a missing username and a wrong
	// password both surface as ErrInvalidCredentials.
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrWrongOldPassword     = errors.New("old password is incorrect")
	ErrUsernameAlreadyInUse = errors.New("username is already in use")
	ErrGeneratingJwt        = errors.New("error generating jwt")
)

type LoginResult struct {
	User        schema.User
	AccessToken string
}

type IdentityProvider interface {
	AuthMiddleware() chi.Middlewares

	Register(username, password, role string) (LoginResult, error)

	Login(username, password string) (LoginResult, error)

	ChangePassword(userId uuid.UUID, oldPassword, newPassword string) error

	// EnsureAdmin creates the default admin account if no admin exists.
	// Reports whether an account was created.
	EnsureAdmin() (bool, error)

	GetTokenExpiration(r *http.Request) (time.Time, error)
}

type requestContextKey string

const UserRequestContextKey requestContextKey = "user"
