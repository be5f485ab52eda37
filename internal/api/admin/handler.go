package admin

import (
	"encoding/json"
	"net/http"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/service/adminservice"
)

// AdminService define o contrato que o Handler espera das operações administrativas.
type AdminService interface {
	CleanupAllData(ctx domain.Context) (adminservice.CleanupResult, error)
}

// Handler agrupa os métodos administrativos de dados.
type Handler struct {
	Service AdminService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler administrativo.
func NewHandler(svc AdminService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CleanupHandler lida com DELETE /v1/admin/data: remove todos os dados em
// ordem segura para as FKs e devolve o total removido por coleção.
func (h *Handler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.Service.CleanupAllData(r.Context())
	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		h.Logger.Error("Falha na limpeza de dados.", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(domain.ErrorResponse{
			Code:     status,
			Category: category,
			Message:  message,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
