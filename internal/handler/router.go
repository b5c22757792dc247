package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/veiculos/internal/metrics"
	"github.com/hitoshi/veiculos/internal/middleware"
	"github.com/hitoshi/veiculos/internal/model"
	"github.com/hitoshi/veiculos/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// ヘルスチェック
	HealthChecker repository.HealthChecker

	// サービス
	AuthService          AuthServiceInterface
	AdministratorService AdministratorServiceInterface
	VehicleService       VehicleServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// 保護されたルートではさらに Token → RateLimit(General) → RequireRoles を通る。
// ログインルートにはIPごとのレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Collector)
	adminHandler := NewAdministratorHandler(deps.AdministratorService)
	vehicleHandler := NewVehicleHandler(deps.VehicleService)

	adminOnly := middleware.RequireRoles(deps.Collector, model.RoleAdmin)
	anyRole := middleware.RequireRoles(deps.Collector, model.RoleAdmin, model.RoleEditor)

	// --- 認証不要のルート ---
	r.Get("/", Home)
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/administradores/login", authHandler.Login)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Token → RateLimit(General) → RequireRoles
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewTokenMiddleware(deps.TokenVerifier, deps.Collector))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 管理者管理（Adminのみ）
		r.With(adminOnly).Post("/administradores", adminHandler.Create)
		r.With(adminOnly).Get("/administradores", adminHandler.List)
		r.With(adminOnly).Get("/administradores/{id}", adminHandler.Get)

		// 車両管理（参照・登録はAdmin/Editor、更新・削除はAdminのみ）
		r.With(anyRole).Post("/veiculos", vehicleHandler.Create)
		r.With(anyRole).Get("/veiculos", vehicleHandler.List)
		r.With(anyRole).Get("/veiculos/{id}", vehicleHandler.Get)
		r.With(adminOnly).Put("/veiculos/{id}", vehicleHandler.Update)
		r.With(adminOnly).Delete("/veiculos/{id}", vehicleHandler.Delete)
	})

	return r
}
