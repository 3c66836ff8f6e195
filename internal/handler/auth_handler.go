// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/travelbook/internal/middleware"
	"github.com/hitoshi/travelbook/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register はアカウントを作成しトークンを発行する。
	Register(ctx context.Context, fullName, email, password string) (*model.Account, string, error)
	// Login はパスワード認証を行いトークンを発行する。
	Login(ctx context.Context, email, password string) (*model.Account, string, error)
	// ReconcileGoogle はGoogleのアクセストークンを検証し、
	// メールアドレスで既存アカウントに紐付けるか新規作成する。
	ReconcileGoogle(ctx context.Context, accessToken string) (*model.Account, string, error)
	// GetAccount はアカウントを取得する。
	GetAccount(ctx context.Context, accountID string) (*model.Account, error)
}

// AuthHandler はアカウント・認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// createAccountRequest はアカウント作成リクエストのボディ。
type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// oauthRequest はOAuthログインリクエストのボディ。
type oauthRequest struct {
	AccessToken string `json:"accessToken"`
}

// authResponse は認証成功時のレスポンス。アカウント概要とベアラートークンを返す。
type authResponse struct {
	User        model.AccountSummary `json:"user"`
	AccessToken string               `json:"accessToken"`
}

// accountResponse はアカウント取得のレスポンス。
type accountResponse struct {
	User model.AccountSummary `json:"user"`
}

// CreateAccount は新規アカウントを作成する。
// POST /create-account
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	if strings.TrimSpace(req.FullName) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("fullName"))
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("email"))
		return
	}
	if req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("password"))
		return
	}

	account, token, err := h.service.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User:        account.Summary(),
		AccessToken: token,
	})
}

// Login はパスワードでログインする。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("email"))
		return
	}
	if req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("password"))
		return
	}

	account, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:        account.Summary(),
		AccessToken: token,
	})
}

// OAuthGoogle はGoogleアカウントでログインする。
// POST /oauth/google
func (h *AuthHandler) OAuthGoogle(w http.ResponseWriter, r *http.Request) {
	var req oauthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	if strings.TrimSpace(req.AccessToken) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("accessToken"))
		return
	}

	account, token, err := h.service.ReconcileGoogle(r.Context(), req.AccessToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:        account.Summary(),
		AccessToken: token,
	})
}

// GetAccount は認証済みアカウント自身の情報を取得する。
// GET /get-user
func (h *AuthHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{User: account.Summary()})
}
