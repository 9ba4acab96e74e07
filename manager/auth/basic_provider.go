package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"rentdesk/manager/schema"
	"rentdesk/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

type BasicIdentityProvider struct {
	jwtManager *JwtManager
	db         *gorm.DB
	auditLog   AuditLogger
}

func NewBasicIdentityProvider(db *gorm.DB, auditLog AuditLogger, secret []byte) IdentityProvider {
	return &BasicIdentityProvider{
		jwtManager: NewJwtManager(secret),
		db:         db,
		auditLog:   auditLog,
	}
}

func (auth *BasicIdentityProvider) addUserToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			userId, err := ValueFromContext(r, userIdKey)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			userUUID, err := uuid.Parse(userId)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, fmt.Sprintf("invalid user uuid '%v': %v", userId, err))
				return
			}

			user, err := schema.GetUser(userUUID, auth.db)
			if err != nil {
				if errors.Is(err, schema.ErrUserNotFound) {
					utils.WriteError(w, http.StatusUnauthorized, "token does not match a known user")
					return
				}
				utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("unable to find user %v: %v", userId, err))
				return
			}

			reqCtx := r.Context()
			reqCtx = context.WithValue(reqCtx, UserRequestContextKey, user)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func (auth *BasicIdentityProvider) AuthMiddleware() chi.Middlewares {
	return chi.Middlewares{auth.jwtManager.Verifier(), auth.jwtManager.Authenticator(), auth.addUserToContext(), auth.auditLog.Middleware}
}

func (auth *BasicIdentityProvider) Register(username, password, role string) (LoginResult, error) {
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return LoginResult{}, fmt.Errorf("error encrypting password: %w", err)
	}

	if role == "" {
		role = schema.RoleUser
	}

	newUser := schema.User{Id: uuid.New(), Username: username, Password: hashedPwd, Role: role}

	err = auth.db.Transaction(func(txn *gorm.DB) error {
		var existingUser schema.User
		result := txn.Limit(1).Find(&existingUser, "username = ?", username)
		if result.Error != nil {
			slog.Error("sql error checking for existing username", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			return ErrUsernameAlreadyInUse
		}

		result = txn.Create(&newUser)
		if result.Error != nil {
			slog.Error("sql error creating new user entry", "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		return nil
	})

	if err != nil {
		return LoginResult{}, err
	}

	token, err := auth.jwtManager.CreateUserJwt(newUser)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}

	return LoginResult{User: newUser, AccessToken: token}, nil
}

func (auth *BasicIdentityProvider) Login(username, password string) (LoginResult, error) {
	var user schema.User
	result := auth.db.First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		slog.Error("sql error looking up user by username", "error", result.Error)
		return LoginResult{}, schema.ErrDbAccessFailed
	}

	err := bcrypt.CompareHashAndPassword(user.Password, []byte(password))
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := auth.jwtManager.CreateUserJwt(user)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}

	return LoginResult{User: user, AccessToken: token}, nil
}

func (auth *BasicIdentityProvider) ChangePassword(userId uuid.UUID, oldPassword, newPassword string) error {
	return auth.db.Transaction(func(txn *gorm.DB) error {
		user, err := schema.GetUser(userId, txn)
		if err != nil {
			return err
		}

		if err := bcrypt.CompareHashAndPassword(user.Password, []byte(oldPassword)); err != nil {
			return ErrWrongOldPassword
		}

		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), 10)
		if err != nil {
			return fmt.Errorf("error encrypting password: %w", err)
		}

		result := txn.Model(&schema.User{Id: userId}).Update("password", hashedPwd)
		if result.Error != nil {
			slog.Error("sql error updating user password", "user_id", userId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		return nil
	})
}

func (auth *BasicIdentityProvider) EnsureAdmin() (bool, error) {
	created := false

	err := auth.db.Transaction(func(txn *gorm.DB) error {
		var existingAdmin schema.User
		result := txn.Limit(1).Find(&existingAdmin, "role = ?", schema.RoleAdmin)
		if result.Error != nil {
			slog.Error("sql error checking for existing admin", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			return nil
		}

		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), 10)
		if err != nil {
			return fmt.Errorf("error encrypting admin password: %w", err)
		}

		admin := schema.User{Id: uuid.New(), Username: defaultAdminUsername, Password: hashedPwd, Role: schema.RoleAdmin}
		result = txn.Create(&admin)
		if result.Error != nil {
			slog.Error("sql error creating default admin", "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		created = true
		return nil
	})

	return created, err
}

func (auth *BasicIdentityProvider) GetTokenExpiration(r *http.Request) (time.Time, error) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return time.Time{}, fmt.Errorf("error retrieving access token: %w", err)
	}

	return token.Expiration(), nil
}
