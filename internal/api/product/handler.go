package product

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx domain.Context, product domain.Product) (domain.Product, error)
	GetProductByID(ctx domain.Context, id string) (domain.Product, error)
	GetProducts(ctx domain.Context, categoryID string) ([]domain.Product, error)
	GetProductsWithoutInventory(ctx domain.Context) ([]domain.Product, error)
	UpdateProduct(ctx domain.Context, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx domain.Context, id string) error
}

// Handler agrupa todos os métodos de Handler de produtos.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
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

// ProductsHandler lida com a coleção /v1/products.
// GET aceita o filtro opcional ?category_id=; POST cria um produto.
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categoryID := r.URL.Query().Get("category_id")
		products, err := h.Service.GetProducts(r.Context(), categoryID)
		if products == nil && err == nil {
			products = []domain.Product{}
		}
		h.handleServiceResponse(w, r, products, err, http.StatusOK)

	case http.MethodPost:
		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		created, err := h.Service.CreateProduct(r.Context(), product)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// WithoutInventoryHandler lida com GET /v1/products/without-inventory:
// os produtos ainda sem registro no Ledger, para o seletor da apresentação.
func (h *Handler) WithoutInventoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	products, err := h.Service.GetProductsWithoutInventory(r.Context())
	if products == nil && err == nil {
		products = []domain.Product{}
	}
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// ProductByIDHandler lida com /v1/products/{id} (GET, PUT, DELETE).
func (h *Handler) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := h.Service.GetProductByID(r.Context(), id)
		h.handleServiceResponse(w, r, product, err, http.StatusOK)

	case http.MethodPut:
		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		product.ID = id
		updated, err := h.Service.UpdateProduct(r.Context(), product)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteProduct(r.Context(), id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
