package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/veiculos/internal/model"
)

// VehicleServiceInterface は車両ハンドラーが必要とするサービスインターフェース。
type VehicleServiceInterface interface {
	Create(ctx context.Context, in model.VehicleInput) (*model.Vehicle, error)
	List(ctx context.Context, page int, filter model.VehicleFilter) ([]*model.Vehicle, error)
	Get(ctx context.Context, id int64) (*model.Vehicle, error)
	Update(ctx context.Context, id int64, in model.VehicleInput) (*model.Vehicle, error)
	Delete(ctx context.Context, id int64) error
}

// VehicleHandler は車両管理のHTTPハンドラー。
type VehicleHandler struct {
	service VehicleServiceInterface
}

// NewVehicleHandler はVehicleHandlerを生成する。
func NewVehicleHandler(service VehicleServiceInterface) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// vehicleRequest は車両の登録・更新リクエストのボディ。
type vehicleRequest struct {
	Nome  string `json:"nome"`
	Marca string `json:"marca"`
	Ano   int    `json:"ano"`
}

// vehicleResponse は車両のAPIレスポンス。
type vehicleResponse struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Marca string `json:"marca"`
	Ano   int    `json:"ano"`
}

func (req vehicleRequest) toInput() model.VehicleInput {
	return model.VehicleInput{Name: req.Nome, Brand: req.Marca, Year: req.Ano}
}

// Create は車両を登録する。
// POST /veiculos
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/veiculos/%d", v.ID))
	writeJSON(w, http.StatusCreated, toVehicleResponse(v))
}

// List は車両一覧を返す。
// GET /veiculos?pagina=N&nome=...&marca=...
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, apiErr := parsePage(r)
	if apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	q := r.URL.Query()
	filter := model.VehicleFilter{Name: q.Get("nome"), Brand: q.Get("marca")}

	vehicles, err := h.service.List(r.Context(), page, filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]vehicleResponse, len(vehicles))
	for i, v := range vehicles {
		resp[i] = toVehicleResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は車両を1件返す。
// GET /veiculos/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(v))
}

// Update は車両を上書き更新する。
// PUT /veiculos/{id}
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	var req vehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.service.Update(r.Context(), id, req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(v))
}

// Delete は車両を削除する。
// DELETE /veiculos/{id}
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toVehicleResponse(v *model.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:    v.ID,
		Nome:  v.Name,
		Marca: v.Brand,
		Ano:   v.Year,
	}
}
