package category

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// CategoryService define o contrato que o Handler espera da camada de Serviço.
type CategoryService interface {
	CreateCategory(ctx domain.Context, category domain.Category) (domain.Category, error)
	GetCategoryByID(ctx domain.Context, id string) (domain.Category, error)
	GetAllCategories(ctx domain.Context) ([]domain.Category, error)
	UpdateCategory(ctx domain.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx domain.Context, id string) error
}

// Handler agrupa todos os métodos de Handler de categorias.
type Handler struct {
	Service CategoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CategoryService, log logger.Logger) *Handler {
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

// CategoriesHandler lida com a coleção /v1/categories (GET lista, POST cria).
func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := h.Service.GetAllCategories(r.Context())
		if categories == nil && err == nil {
			categories = []domain.Category{}
		}
		h.handleServiceResponse(w, r, categories, err, http.StatusOK)

	case http.MethodPost:
		var category domain.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		created, err := h.Service.CreateCategory(r.Context(), category)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// CategoryByIDHandler lida com /v1/categories/{id} (GET, PUT, DELETE).
func (h *Handler) CategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/categories/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		category, err := h.Service.GetCategoryByID(r.Context(), id)
		h.handleServiceResponse(w, r, category, err, http.StatusOK)

	case http.MethodPut:
		var category domain.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		category.ID = id
		updated, err := h.Service.UpdateCategory(r.Context(), category)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteCategory(r.Context(), id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
