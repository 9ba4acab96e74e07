package services

import (
	"errors"
	"fmt"
	"net/http"
	"rentdesk/manager/auth"
	"rentdesk/manager/schema"
	"rentdesk/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
	minPasswordLen = 6
)

type UserService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

type UserRecord struct {
	Id        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func convertToUserRecord(user schema.User) UserRecord {
	return UserRecord{
		Id:        user.Id,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

type authResponse struct {
	User  UserRecord `json:"user"`
	Token string     `json:"token"`
}

func (s *UserService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", s.Register)
	r.Post("/login", s.Login)
	r.Post("/init-admin", s.InitAdmin)

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/me", s.Info)
		r.Get("/token", s.TokenInfo)
		r.Put("/password", s.ChangePassword)
	})

	return r
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func validateCredentials(username, password string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func (s *UserService) Register(w http.ResponseWriter, r *http.Request) {
	var params registerRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := validateCredentials(params.Username, params.Password); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.userAuth.Register(params.Username, params.Password, schema.RoleUser)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameAlreadyInUse) {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("error registering user: %v", err))
		return
	}

	utils.WriteDataMessage(w, authResponse{User: convertToUserRecord(result.User), Token: result.AccessToken}, "registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *UserService) Login(w http.ResponseWriter, r *http.Request) {
	var params loginRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Username == "" || params.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := s.userAuth.Login(params.Username, params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("error logging in: %v", err))
		return
	}

	utils.WriteDataMessage(w, authResponse{User: convertToUserRecord(result.User), Token: result.AccessToken}, "login successful")
}

func (s *UserService) InitAdmin(w http.ResponseWriter, r *http.Request) {
	created, err := s.userAuth.EnsureAdmin()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("error initializing admin account: %v", err))
		return
	}

	if created {
		utils.WriteMessage(w, "admin account created, username: admin, password: admin123")
	} else {
		utils.WriteMessage(w, "admin account already exists")
	}
}

func (s *UserService) Info(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteData(w, convertToUserRecord(user))
}

type tokenInfoResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *UserService) TokenInfo(w http.ResponseWriter, r *http.Request) {
	expiration, err := s.userAuth.GetTokenExpiration(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteData(w, tokenInfoResponse{ExpiresAt: expiration})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *UserService) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var params changePasswordRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if len(params.NewPassword) < minPasswordLen {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("new password must be at least %d characters", minPasswordLen))
		return
	}

	err = s.userAuth.ChangePassword(user.Id, params.OldPassword, params.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrWrongOldPassword) {
			utils.WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("error updating password: %v", err))
		return
	}

	utils.WriteMessage(w, "password updated successfully")
}
