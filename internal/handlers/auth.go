package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/readshelf/internal/logging"
	"github.com/HammerMeetNail/readshelf/internal/models"
	"github.com/HammerMeetNail/readshelf/internal/services"
)

type AuthHandler struct {
	userService  services.UserServiceInterface
	authService  services.AuthServiceInterface
	tokenService services.TokenServiceInterface
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, tokenService services.TokenServiceInterface) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		tokenService: tokenService,
	}
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type AuthResponse struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	Message      string       `json:"message,omitempty"`
}

type VerifyResponse struct {
	Verified bool `json:"verified"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "FullName is required")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrPasswordTooLong) {
			writeError(w, http.StatusBadRequest, "Password is too long")
			return
		}
		logging.Error("Error hashing password", logging.Fields{"error": err})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		logging.Error("Error creating user", logging.Fields{"error": err})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	pair, err := h.tokenService.IssuePair(identityFor(user))
	if err != nil {
		logging.Error("Error issuing tokens", logging.Fields{"error": err, "user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "User registered successfully",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		logging.Error("Error getting user", logging.Fields{"error": err})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	pair, err := h.tokenService.IssuePair(identityFor(user))
	if err != nil {
		logging.Error("Error issuing tokens", logging.Fields{"error": err, "user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "Login successful",
	})
}

// Verify checks a token supplied in the body. A missing token is treated the
// same as an invalid one.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if _, err := h.tokenService.Verify(token); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{Verified: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), identity.UserID)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Error("Error getting user", logging.Fields{"error": err, "user_id": identity.UserID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func identityFor(user *models.User) models.Identity {
	return models.Identity{UserID: user.ID, Email: user.Email, FullName: user.FullName}
}
