package adminservice

import (
	"context"

	"stocktrack/internal/domain"
	"stocktrack/internal/pkg/logger"
)

// CleanupStore é o contrato que a limpeza administrativa espera da camada de
// Persistência: remover todos os dados atomicamente (uma única transação) e
// informar quantos registros saíram por coleção.
type CleanupStore interface {
	CleanupAll(ctx context.Context) (inventoryDeleted, productsDeleted, categoriesDeleted int64, err error)
}

// CleanupResult resume o resultado da limpeza, por coleção.
type CleanupResult struct {
	InventoryDeleted  int64 `json:"inventory_deleted"`
	ProductsDeleted   int64 `json:"products_deleted"`
	CategoriesDeleted int64 `json:"categories_deleted"`
}

// Service implementa as operações administrativas de dados (ambiente de
// desenvolvimento/demonstração).
type Service struct {
	store  CleanupStore
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço Administrativo.
func NewService(store CleanupStore, logger logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// CleanupAllData remove todos os dados. A operação é tudo-ou-nada: uma falha
// em qualquer etapa desfaz a limpeza inteira (transação no repositório).
func (s *Service) CleanupAllData(ctx domain.Context) (CleanupResult, error) {
	s.logger.Info("Iniciando limpeza de dados.", nil)

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CleanupAllData", nil)
	}

	inventoryDeleted, productsDeleted, categoriesDeleted, err := s.store.CleanupAll(ctxGo)
	if err != nil {
		s.logger.Error("Falha na limpeza de dados.", err)
		return CleanupResult{}, err // DBError do repositório; nada foi removido
	}

	result := CleanupResult{
		InventoryDeleted:  inventoryDeleted,
		ProductsDeleted:   productsDeleted,
		CategoriesDeleted: categoriesDeleted,
	}

	s.logger.Info("Limpeza de dados concluída.", map[string]interface{}{
		"inventory_deleted":  result.InventoryDeleted,
		"products_deleted":   result.ProductsDeleted,
		"categories_deleted": result.CategoriesDeleted,
	})
	return result, nil
}
