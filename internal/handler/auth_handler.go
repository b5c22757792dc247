// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/veiculos/internal/auth"
	"github.com/hitoshi/veiculos/internal/metrics"
	"github.com/hitoshi/veiculos/internal/middleware"
	"github.com/hitoshi/veiculos/internal/model"
	"github.com/hitoshi/veiculos/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, in model.LoginInput) (*auth.LoginResult, error)
}

// AuthHandler はログインのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	collector metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service:   service,
		collector: collector,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Email  string `json:"email"`
	Perfil string `json:"perfil"`
	Token  string `json:"token"`
}

// Login はemailとパスワードを照合し、トークンを発行する。
// POST /administradores/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := model.LoginInput{Email: req.Email, Password: req.Senha}
	if result := validation.ValidateLogin(in); !result.OK() {
		writeValidationResult(w, result)
		return
	}

	res, err := h.service.Login(r.Context(), in)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.collector.RecordLogin(metrics.LoginFailure)
		slog.Warn("login failed",
			slog.String("email", in.Email),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.collector.RecordLogin(metrics.LoginSuccess)
	writeJSON(w, http.StatusOK, loginResponse{
		Email:  res.Administrator.Email,
		Perfil: res.Administrator.Role.String(),
		Token:  res.Token,
	})
}
