package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sparkychildcharlie/tournament-engine/services"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Nickname == "" || input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("nickname, email, and password are required"))
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	user.PasswordHash = ""
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"name":    user.Nickname,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
