// Package app はアプリケーションの初期化と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/veiculos/internal/administrator"
	"github.com/hitoshi/veiculos/internal/auth"
	"github.com/hitoshi/veiculos/internal/config"
	"github.com/hitoshi/veiculos/internal/database"
	"github.com/hitoshi/veiculos/internal/handler"
	"github.com/hitoshi/veiculos/internal/logger"
	"github.com/hitoshi/veiculos/internal/metrics"
	"github.com/hitoshi/veiculos/internal/middleware"
	"github.com/hitoshi/veiculos/internal/repository"
	"github.com/hitoshi/veiculos/internal/security"
	"github.com/hitoshi/veiculos/internal/vehicle"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// カレントディレクトリの.envを読み込み（実環境変数が優先）、環境変数からConfigを読み込み、
// JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. .envの読み込み。存在しない場合は何もしない
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 4. 設定されたログレベルで再初期化する
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store_backend", cfg.StoreBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// stores はバックエンドごとのリポジトリとヘルスチェック対象をまとめたもの。
type stores struct {
	admins   repository.AdministratorRepository
	vehicles repository.VehicleRepository
	health   repository.HealthChecker
	close    func() error
}

// nopHealthChecker はインメモリストア用のヘルスチェック。常に成功する。
type nopHealthChecker struct{}

func (nopHealthChecker) PingContext(context.Context) error { return nil }

// openStores は設定に応じたストアを開く。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return &stores{
			admins:   repository.NewMemoryAdministratorRepo(),
			vehicles: repository.NewMemoryVehicleRepo(),
			health:   nopHealthChecker{},
			close:    func() error { return nil },
		}, nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		admins:   repository.NewPostgresAdministratorRepo(db),
		vehicles: repository.NewPostgresVehicleRepo(db),
		health:   db,
		close:    db.Close,
	}, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)
	return db, nil
}

// application はHTTPハンドラーと終了処理をまとめたもの。
type application struct {
	handler http.Handler
	close   func()
}

// newApplication はストアからサービス・ミドルウェア・ルーターを組み立てる。
func newApplication(cfg *config.Config, st *stores, accessLog *slog.Logger) (*application, error) {
	// 1. トークン発行・検証
	tokenConfig := auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}
	issuer, err := auth.NewTokenIssuer(tokenConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	verifier, err := auth.NewTokenVerifier(tokenConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	authService := auth.NewService(st.admins, issuer, auth.ServiceConfig{BcryptCost: cfg.BcryptCost})
	adminService := administrator.NewService(st.admins, sanitizer, cfg.BcryptCost)
	vehicleService := vehicle.NewService(st.vehicles, sanitizer)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin),
		collector,
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            accessLog,
		TokenVerifier:     verifier,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		Collector: collector,
		Gatherer:  reg,

		HealthChecker: st.health,

		AuthService:          authService,
		AdministratorService: adminService,
		VehicleService:       vehicleService,
	})

	return &application{
		handler: router,
		close:   rateLimiter.Stop,
	}, nil
}

// seedAdministrator は設定された初期管理者（Admin）を作成する。
func seedAdministrator(ctx context.Context, cfg *config.Config, admins repository.AdministratorRepository) error {
	if !cfg.HasSeedAdmin() {
		return nil
	}

	svc := administrator.NewService(admins, security.NewTextSanitizer(), cfg.BcryptCost)
	created, err := svc.EnsureSeed(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	if created {
		slog.Info("seed administrator created", slog.String("email", cfg.SeedAdminEmail))
	}
	return nil
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. ストア
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// インメモリストアは起動のたびに空になるため、ここで初期管理者を作成する
	if cfg.StoreBackend == config.StoreBackendMemory {
		if err := seedAdministrator(ctx, cfg, st.admins); err != nil {
			return err
		}
	}

	// 2. アプリケーションの構築
	a, err := newApplication(cfg, st, slog.Default())
	if err != nil {
		return err
	}
	defer a.close()

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用し、設定されていれば初期管理者を作成する。
func runMigrate(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreBackend == config.StoreBackendMemory {
		return fmt.Errorf("migrate requires STORE_BACKEND=%s", config.StoreBackendPostgres)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))

	if !cfg.HasSeedAdmin() {
		return nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return seedAdministrator(ctx, cfg, repository.NewPostgresAdministratorRepo(db))
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
