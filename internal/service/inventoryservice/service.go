package inventoryservice

import (
	"context"

	"github.com/google/uuid"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// InventoryRepository define o contrato que o Ledger espera da camada de
// Persistência. AdjustQuantity e SetQuantity devem ser atômicos por registro.
type InventoryRepository interface {
	Create(ctx context.Context, inv domain.Inventory) (domain.Inventory, error)
	FindByID(ctx context.Context, id string) (domain.Inventory, error)
	FindByProductID(ctx context.Context, productID string) (domain.Inventory, error)
	FindAll(ctx context.Context) ([]domain.Inventory, error)
	FindLowStock(ctx context.Context) ([]domain.Inventory, error)
	Update(ctx context.Context, id string, quantity, minStockLevel *int) (domain.Inventory, error)
	AdjustQuantity(ctx context.Context, productID string, delta int) (domain.Inventory, error)
	SetQuantity(ctx context.Context, productID string, quantity int) (domain.Inventory, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa o Ledger de Inventário e o Protocolo de Ajuste de Estoque.
// É a única via sancionada para alterar quantidades.
type Service struct {
	repo   InventoryRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Inventário.
func NewService(repo InventoryRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInventory cria o registro de inventário de um produto.
// Falha com conflito se o produto já possuir registro (relação 1:1) e com
// NotFound se o produto não existir.
func (s *Service) CreateInventory(ctx domain.Context, req domain.CreateInventoryRequest) (domain.Inventory, error) {
	s.logger.Debug("Iniciando criação de inventário no serviço.", map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	if _, err := uuid.Parse(req.ProductID); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if req.Quantity < 0 {
		return domain.Inventory{}, apperror.NewValidationError("A quantidade inicial não pode ser negativa.")
	}
	if req.MinStockLevel < 0 {
		return domain.Inventory{}, apperror.NewValidationError("O nível mínimo de estoque não pode ser negativo.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CreateInventory", nil)
	}

	created, err := s.repo.Create(ctxGo, domain.Inventory{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
	})
	if err != nil {
		s.logger.Error("Falha ao criar inventário no repositório.", err)
		return domain.Inventory{}, err // ConflictError, NotFoundError ou DBError
	}

	s.logger.Info("Inventário criado com sucesso.", map[string]interface{}{"id": created.ID, "product_id": created.ProductID})
	return created, nil
}

// GetInventoryByID busca um registro pelo ID.
func (s *Service) GetInventoryByID(ctx domain.Context, id string) (domain.Inventory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do inventário deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetInventoryByID", nil)
	}

	return s.repo.FindByID(ctxGo, id)
}

// GetInventoryByProduct busca o registro de inventário de um produto.
func (s *Service) GetInventoryByProduct(ctx domain.Context, productID string) (domain.Inventory, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetInventoryByProduct", nil)
	}

	return s.repo.FindByProductID(ctxGo, productID)
}

// GetAllInventory lista todos os registros com o produto embutido,
// em ordem estável de criação.
func (s *Service) GetAllInventory(ctx domain.Context) ([]domain.Inventory, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetAllInventory", nil)
	}

	records, err := s.repo.FindAll(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao buscar inventário no repositório.", err)
		return nil, err
	}
	return records, nil
}

// GetLowStockItems lista os registros classificados como estoque baixo
// (quantity <= min_stock_level), cada um enriquecido com a falta (shortage)
// para sugerir a quantidade de reposição.
func (s *Service) GetLowStockItems(ctx domain.Context) ([]domain.LowStockItem, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetLowStockItems", nil)
	}

	records, err := s.repo.FindLowStock(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao buscar estoque baixo no repositório.", err)
		return nil, err
	}

	items := make([]domain.LowStockItem, 0, len(records))
	for _, inv := range records {
		items = append(items, domain.LowStockItem{
			Inventory: inv,
			Shortage:  domain.Shortage(inv),
		})
	}
	return items, nil
}

// UpdateInventory sobrescreve os campos fornecidos de um registro.
// Valores negativos são rejeitados antes de qualquer escrita.
func (s *Service) UpdateInventory(ctx domain.Context, id string, req domain.UpdateInventoryRequest) (domain.Inventory, error) {
	s.logger.Debug("Iniciando atualização de inventário no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do inventário deve ser um UUID válido.")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return domain.Inventory{}, apperror.NewValidationError("A quantidade não pode ser negativa.")
	}
	if req.MinStockLevel != nil && *req.MinStockLevel < 0 {
		return domain.Inventory{}, apperror.NewValidationError("O nível mínimo de estoque não pode ser negativo.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para UpdateInventory", nil)
	}

	updated, err := s.repo.Update(ctxGo, id, req.Quantity, req.MinStockLevel)
	if err != nil {
		s.logger.Error("Falha ao atualizar inventário no repositório.", err)
		return domain.Inventory{}, err
	}

	s.logger.Info("Inventário atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "quantity": updated.Quantity})
	return updated, nil
}

// AddStock adiciona uma quantidade positiva ao estoque de um produto.
func (s *Service) AddStock(ctx domain.Context, productID string, amount int) (domain.Inventory, error) {
	s.logger.Debug("Iniciando AddStock no serviço.", map[string]interface{}{"product_id": productID, "amount": amount})

	if _, err := uuid.Parse(productID); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if amount <= 0 {
		return domain.Inventory{}, apperror.NewValidationError("A quantidade a adicionar deve ser positiva.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para AddStock", nil)
	}

	inv, err := s.repo.AdjustQuantity(ctxGo, productID, amount)
	if err != nil {
		s.logger.Error("Falha ao adicionar estoque no repositório.", err)
		return domain.Inventory{}, err
	}

	s.logger.Info("Estoque adicionado com sucesso.", map[string]interface{}{
		"product_id":   productID,
		"amount":       amount,
		"new_quantity": inv.Quantity,
	})
	return inv, nil
}

// RemoveStock remove uma quantidade positiva do estoque de um produto.
// A invariante central do Ledger: a quantidade nunca fica negativa. Se a
// remoção ultrapassar o disponível, a operação falha com estoque insuficiente
// e o registro permanece intacto.
func (s *Service) RemoveStock(ctx domain.Context, productID string, amount int) (domain.Inventory, error) {
	s.logger.Debug("Iniciando RemoveStock no serviço.", map[string]interface{}{"product_id": productID, "amount": amount})

	if _, err := uuid.Parse(productID); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if amount <= 0 {
		return domain.Inventory{}, apperror.NewValidationError("A quantidade a remover deve ser positiva.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para RemoveStock", nil)
	}

	inv, err := s.repo.AdjustQuantity(ctxGo, productID, -amount)
	if err != nil {
		s.logger.Error("Falha ao remover estoque no repositório.", err)
		return domain.Inventory{}, err // InsufficientStockError, NotFoundError ou DBError
	}

	s.logger.Info("Estoque removido com sucesso.", map[string]interface{}{
		"product_id":   productID,
		"amount":       amount,
		"new_quantity": inv.Quantity,
	})
	return inv, nil
}

// SetStock sobrescreve a quantidade do registro de um produto com um valor
// absoluto não-negativo (edição manual, em oposição ao ajuste por delta).
func (s *Service) SetStock(ctx domain.Context, productID string, quantity int) (domain.Inventory, error) {
	s.logger.Debug("Iniciando SetStock no serviço.", map[string]interface{}{"product_id": productID, "quantity": quantity})

	if _, err := uuid.Parse(productID); err != nil {
		return domain.Inventory{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if quantity < 0 {
		return domain.Inventory{}, apperror.NewValidationError("A quantidade não pode ser negativa.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para SetStock", nil)
	}

	inv, err := s.repo.SetQuantity(ctxGo, productID, quantity)
	if err != nil {
		s.logger.Error("Falha ao sobrescrever estoque no repositório.", err)
		return domain.Inventory{}, err
	}

	s.logger.Info("Estoque sobrescrito com sucesso.", map[string]interface{}{
		"product_id": productID,
		"quantity":   inv.Quantity,
	})
	return inv, nil
}

// DeleteInventory remove um registro de inventário.
// A exclusão nunca se propaga ao Produto.
func (s *Service) DeleteInventory(ctx domain.Context, id string) error {
	s.logger.Debug("Iniciando exclusão de inventário no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do inventário deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para DeleteInventory", nil)
	}

	if err := s.repo.Delete(ctxGo, id); err != nil {
		s.logger.Error("Falha ao deletar inventário no repositório.", err)
		return err
	}

	s.logger.Info("Inventário deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}
