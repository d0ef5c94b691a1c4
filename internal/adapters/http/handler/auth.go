package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogurasousui/employee-management/internal/core/auth"
	"github.com/ogurasousui/employee-management/internal/core/user"
)

// TokenIssuer はログイン済みユーザーにアクセストークンを発行します。
type TokenIssuer interface {
	Issue(userID string, role auth.Role) (string, time.Time, error)
}

// AuthHandler はユーザー登録・ログイン API の HTTP 実装です。
type AuthHandler struct {
	users  user.UseCase
	tokens TokenIssuer
}

// NewAuthHandler は AuthHandler を生成します。
func NewAuthHandler(users user.UseCase, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register はユーザーを登録し、トークンを返します。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, jsonBodyLimit)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed JSON body", errBadRequest))
		return
	}

	created, err := h.users.Register(r.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, created)
}

// Login はメールアドレスとパスワードを照合し、トークンを返します。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, jsonBodyLimit)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed JSON body", errBadRequest))
		return
	}

	found, err := h.users.Authenticate(r.Context(), user.AuthenticateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, found)
}

// Me は認証済みユーザー自身の情報を返します。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())

	found, err := h.users.GetUser(r.Context(), user.GetUserInput{ID: caller.UserID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(found))
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *user.User) {
	token, expiresAt, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, status, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(u),
	})
}
