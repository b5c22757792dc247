// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/veiculos/internal/auth"
	"github.com/hitoshi/veiculos/internal/metrics"
	"github.com/hitoshi/veiculos/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストに検証済みクレームを格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenVerifier はトークン検証に必要なインターフェース。*auth.TokenVerifierが満たす。
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// NewTokenMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証済みクレームをリクエストコンテキストに注入する。
// トークンがない・無効・期限切れの場合は401 Unauthorizedを返す。
func NewTokenMiddleware(verifier TokenVerifier, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				collector.RecordAuthDenied(metrics.DenialMissingToken)
				writeUnauthorized(w, `Bearer realm="veiculos"`)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason := metrics.DenialInvalidToken
				if errors.Is(err, auth.ErrTokenExpired) {
					reason = metrics.DenialExpiredToken
				}
				collector.RecordAuthDenied(reason)
				slog.Warn("token rejected",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				writeUnauthorized(w, `Bearer realm="veiculos", error="invalid_token"`)
				return
			}

			recordIdentity(r.Context(), claims.Email)
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoles はコンテキストのロールが許可集合に含まれる場合のみ通過させるミドルウェアを返す。
// クレームがない場合は401、ロールが不足する場合は403を返す。
func RequireRoles(collector metrics.MetricsCollector, roles ...model.Role) func(next http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ClaimsFromContext(r.Context())
			if err != nil {
				collector.RecordAuthDenied(metrics.DenialMissingToken)
				writeUnauthorized(w, `Bearer realm="veiculos"`)
				return
			}

			if _, ok := allowed[claims.Role]; !ok {
				collector.RecordAuthDenied(metrics.DenialRole)
				slog.Warn("role denied",
					slog.String("email", claims.Email),
					slog.String("role", claims.Role.String()),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError(claims.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext はリクエストコンテキストから検証済みクレームを取得する。
// トークンミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

// ContextWithClaims はコンテキストにクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。スキーム名は大文字小文字を区別しない。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, challenge string) {
	w.Header().Set("WWW-Authenticate", challenge)
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}
