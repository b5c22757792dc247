package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/veiculos/internal/model"
)

// AdministratorServiceInterface は管理者ハンドラーが必要とするサービスインターフェース。
type AdministratorServiceInterface interface {
	Register(ctx context.Context, in model.AdministratorInput) (*model.Administrator, error)
	List(ctx context.Context, page int) ([]*model.Administrator, error)
	Get(ctx context.Context, id int64) (*model.Administrator, error)
}

// AdministratorHandler は管理者管理のHTTPハンドラー。
type AdministratorHandler struct {
	service AdministratorServiceInterface
}

// NewAdministratorHandler はAdministratorHandlerを生成する。
func NewAdministratorHandler(service AdministratorServiceInterface) *AdministratorHandler {
	return &AdministratorHandler{service: service}
}

// administratorRequest は管理者登録リクエストのボディ。
// perfilの未送信とnullを区別するためポインタで受け取る。
type administratorRequest struct {
	Email  string  `json:"email"`
	Senha  string  `json:"senha"`
	Perfil *string `json:"perfil"`
}

// administratorResponse は管理者のAPIレスポンス。パスワードは含めない。
type administratorResponse struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Perfil string `json:"perfil"`
}

// Create は管理者を登録する。
// POST /administradores
func (h *AdministratorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req administratorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	admin, err := h.service.Register(r.Context(), model.AdministratorInput{
		Email:    req.Email,
		Password: req.Senha,
		Role:     req.Perfil,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/administradores/%d", admin.ID))
	writeJSON(w, http.StatusCreated, toAdministratorResponse(admin))
}

// List は管理者一覧を返す。
// GET /administradores?pagina=N
func (h *AdministratorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, apiErr := parsePage(r)
	if apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	admins, err := h.service.List(r.Context(), page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]administratorResponse, len(admins))
	for i, a := range admins {
		resp[i] = toAdministratorResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は管理者を1件返す。
// GET /administradores/{id}
func (h *AdministratorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	admin, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdministratorResponse(admin))
}

func toAdministratorResponse(a *model.Administrator) administratorResponse {
	return administratorResponse{
		ID:     a.ID,
		Email:  a.Email,
		Perfil: a.Role.String(),
	}
}
