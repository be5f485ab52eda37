package inventory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// InventoryService define o contrato que o Handler espera do Ledger de Inventário.
type InventoryService interface {
	CreateInventory(ctx domain.Context, req domain.CreateInventoryRequest) (domain.Inventory, error)
	GetInventoryByID(ctx domain.Context, id string) (domain.Inventory, error)
	GetInventoryByProduct(ctx domain.Context, productID string) (domain.Inventory, error)
	GetAllInventory(ctx domain.Context) ([]domain.Inventory, error)
	GetLowStockItems(ctx domain.Context) ([]domain.LowStockItem, error)
	UpdateInventory(ctx domain.Context, id string, req domain.UpdateInventoryRequest) (domain.Inventory, error)
	AddStock(ctx domain.Context, productID string, amount int) (domain.Inventory, error)
	RemoveStock(ctx domain.Context, productID string, amount int) (domain.Inventory, error)
	SetStock(ctx domain.Context, productID string, quantity int) (domain.Inventory, error)
	DeleteInventory(ctx domain.Context, id string) error
}

// Handler agrupa todos os métodos de Handler do inventário.
type Handler struct {
	Service InventoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc InventoryService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// InventoryHandler lida com a coleção /v1/inventory (GET lista, POST cria).
func (h *Handler) InventoryHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.Service.GetAllInventory(r.Context())
		if records == nil && err == nil {
			records = []domain.Inventory{}
		}
		h.handleServiceResponse(w, r, records, err, http.StatusOK)

	case http.MethodPost:
		var req domain.CreateInventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		created, err := h.Service.CreateInventory(r.Context(), req)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// LowStockHandler lida com GET /v1/inventory/low-stock: os registros com
// quantity <= min_stock_level, cada um com a falta sugerida de reposição.
func (h *Handler) LowStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	items, err := h.Service.GetLowStockItems(r.Context())
	if items == nil && err == nil {
		items = []domain.LowStockItem{}
	}
	h.handleServiceResponse(w, r, items, err, http.StatusOK)
}

// InventoryByIDHandler lida com /v1/inventory/{id} (GET, PUT, DELETE).
func (h *Handler) InventoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/inventory/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		inv, err := h.Service.GetInventoryByID(r.Context(), id)
		h.handleServiceResponse(w, r, inv, err, http.StatusOK)

	case http.MethodPut:
		var req domain.UpdateInventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		updated, err := h.Service.UpdateInventory(r.Context(), id, req)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteInventory(r.Context(), id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// InventoryByProductHandler lida com as rotas por produto:
//
//	GET /v1/inventory/product/{productId}          — busca o registro do produto
//	PUT /v1/inventory/product/{productId}          — sobrescreve a quantidade (valor absoluto)
//	PUT /v1/inventory/product/{productId}/add      — adiciona estoque (delta positivo)
//	PUT /v1/inventory/product/{productId}/remove   — remove estoque (delta positivo)
func (h *Handler) InventoryByProductHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/inventory/product/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	productID := parts[0]

	// GET /v1/inventory/product/{productId}
	if len(parts) == 1 && r.Method == http.MethodGet {
		inv, err := h.Service.GetInventoryByProduct(r.Context(), productID)
		h.handleServiceResponse(w, r, inv, err, http.StatusOK)
		return
	}

	// As demais rotas são PUT com payload {"quantity": n}
	if r.Method != http.MethodPut {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req domain.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	var inv domain.Inventory
	var err error

	switch {
	case len(parts) == 1:
		inv, err = h.Service.SetStock(r.Context(), productID, req.Quantity)
	case parts[1] == "add":
		inv, err = h.Service.AddStock(r.Context(), productID, req.Quantity)
	case parts[1] == "remove":
		inv, err = h.Service.RemoveStock(r.Context(), productID, req.Quantity)
	default:
		http.NotFound(w, r)
		return
	}

	h.handleServiceResponse(w, r, inv, err, http.StatusOK)
}
