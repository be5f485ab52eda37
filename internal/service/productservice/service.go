package productservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// ProductRepository define o contrato que o Serviço de Produtos espera da camada de Persistência.
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio do catálogo de Produtos.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produtos.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProduct cria um novo produto após validações de negócio.
func (s *Service) CreateProduct(ctx domain.Context, product domain.Product) (domain.Product, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", map[string]interface{}{"name": product.Name, "sku": product.SKU})

	if err := s.validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CreateProduct", nil)
	}

	createdProduct, err := s.repo.Save(ctxGo, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		return domain.Product{}, err // NotFoundError (categoria inexistente) ou DBError
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": createdProduct.ID, "name": createdProduct.Name})
	return createdProduct, nil
}

// GetProductByID busca um produto pelo ID após validação de formato.
func (s *Service) GetProductByID(ctx domain.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetProductByID", nil)
	}

	product, err := s.repo.FindByID(ctxGo, id)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

// GetProducts busca produtos, opcionalmente filtrados por categoria.
func (s *Service) GetProducts(ctx domain.Context, categoryID string) ([]domain.Product, error) {
	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return nil, apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
		}
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetProducts", nil)
	}

	products, err := s.repo.FindAll(ctxGo, domain.ProductFilter{CategoryID: categoryID})
	if err != nil {
		s.logger.Error("Falha ao buscar produtos no repositório.", err)
		return nil, err
	}

	return products, nil
}

// GetProductsWithoutInventory lista os produtos que ainda não possuem registro
// de inventário. A camada de apresentação usa esta consulta para montar o
// seletor de "produtos disponíveis"; a invariante 1:1 em si é imposta apenas
// pelo Ledger na criação.
func (s *Service) GetProductsWithoutInventory(ctx domain.Context) ([]domain.Product, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetProductsWithoutInventory", nil)
	}

	products, err := s.repo.FindAll(ctxGo, domain.ProductFilter{WithoutInventory: true})
	if err != nil {
		s.logger.Error("Falha ao buscar produtos sem inventário no repositório.", err)
		return nil, err
	}

	return products, nil
}

// UpdateProduct atualiza um produto existente.
func (s *Service) UpdateProduct(ctx domain.Context, product domain.Product) (domain.Product, error) {
	s.logger.Debug("Iniciando atualização de produto no serviço.", map[string]interface{}{"id": product.ID})

	if _, err := uuid.Parse(product.ID); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	if err := s.validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para UpdateProduct", nil)
	}

	updatedProduct, err := s.repo.Update(ctxGo, product)
	if err != nil {
		s.logger.Error("Falha ao atualizar produto no repositório.", err)
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"id": updatedProduct.ID})
	return updatedProduct, nil
}

// DeleteProduct remove um produto. O registro de inventário associado, se
// existir, é removido junto (cascata no DB).
func (s *Service) DeleteProduct(ctx domain.Context, id string) error {
	s.logger.Debug("Iniciando exclusão de produto no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para DeleteProduct", nil)
	}

	if err := s.repo.Delete(ctxGo, id); err != nil {
		s.logger.Error("Falha ao deletar produto no repositório.", err)
		return err
	}

	s.logger.Info("Produto deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// validateProduct aplica as regras de negócio do catálogo.
func (s *Service) validateProduct(product domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperror.NewValidationError("O nome do produto não pode ser vazio.")
	}
	if product.Price.IsNegative() {
		return apperror.NewValidationError("O preço do produto não pode ser negativo.")
	}
	if product.CategoryID != nil {
		if _, err := uuid.Parse(*product.CategoryID); err != nil {
			return apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
		}
	}
	return nil
}
