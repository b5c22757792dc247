package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/veiculos/internal/repository"
)

const healthCheckTimeout = 2 * time.Second

// homeResponse はルートパスのレスポンス。
type homeResponse struct {
	Mensagem string `json:"mensagem"`
	Doc      string `json:"doc"`
}

// Home はAPIの案内を返す。
// GET /
func Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Mensagem: "Bem vindo a API de veículos - Minimal API",
		Doc:      "/metrics",
	})
}

// NewHealthHandler はストアへの疎通を確認するハンドラーを返す。
// GET /health
func NewHealthHandler(checker repository.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
