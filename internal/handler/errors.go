package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/veiculos/internal/middleware"
	"github.com/hitoshi/veiculos/internal/model"
	"github.com/hitoshi/veiculos/internal/validation"
)

// maxPage は受け付けるページ番号の上限。OFFSETの算出がintに収まる範囲に制限する。
const maxPage = math.MaxInt / model.DefaultPageSize

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをJSONとして読み込む。
// 失敗した場合は400レスポンスを書き込み、falseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return false
	}
	return true
}

// writeValidationResult は検証結果を400で返す。
func writeValidationResult(w http.ResponseWriter, result *validation.Result) {
	writeJSON(w, http.StatusBadRequest, result)
}

// writeNotFound はボディなしの404を返す。
func writeNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var result *validation.Result
	if errors.As(err, &result) {
		writeValidationResult(w, result)
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		if statusCode == http.StatusNotFound {
			writeNotFound(w)
			return
		}
		middleware.WriteErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidPage:
		return http.StatusBadRequest
	case model.ErrCodeAdministratorNotFound, model.ErrCodeVehicleNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// parseID はURLパラメータ{id}を数値として読み取る。
// 数値でない場合はどのレコードにも一致しないものとして扱う。
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parsePage はクエリパラメータpagina（別名page）を読み取る。
// 未指定・1未満の場合は1ページ目とする。数値でない場合はエラーを返す。
func parsePage(r *http.Request) (int, *model.APIError) {
	q := r.URL.Query()
	raw := q.Get("pagina")
	if raw == "" {
		raw = q.Get("page")
	}
	if raw == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewInvalidPageError(raw)
	}
	if page < 1 {
		return 1, nil
	}
	if page > maxPage {
		return 0, model.NewInvalidPageError(raw)
	}
	return page, nil
}
