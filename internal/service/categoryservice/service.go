package categoryservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// CategoryRepository define o contrato que o Serviço de Categorias espera da camada de Persistência.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio de Categorias.
type Service struct {
	repo   CategoryRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Categorias.
func NewService(repo CategoryRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateCategory cria uma nova categoria após validações de negócio.
func (s *Service) CreateCategory(ctx domain.Context, category domain.Category) (domain.Category, error) {
	s.logger.Debug("Iniciando criação de categoria no serviço.", map[string]interface{}{"name": category.Name})

	if err := s.validateCategoryName(category.Name); err != nil {
		return domain.Category{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CreateCategory", nil)
	}

	createdCategory, err := s.repo.CreateCategory(ctxGo, category)
	if err != nil {
		s.logger.Error("Falha ao criar categoria no repositório.", err)
		return domain.Category{}, err // ConflictError (nome duplicado) ou DBError
	}

	s.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": createdCategory.ID, "name": createdCategory.Name})
	return createdCategory, nil
}

// GetCategoryByID busca uma categoria pelo ID após validação de formato.
func (s *Service) GetCategoryByID(ctx domain.Context, id string) (domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Category{}, apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetCategoryByID", nil)
	}

	category, err := s.repo.GetCategoryByID(ctxGo, id)
	if err != nil {
		return domain.Category{}, err // Erros do repositório já são NotFoundError ou DBError
	}

	return category, nil
}

// GetAllCategories busca todas as categorias.
func (s *Service) GetAllCategories(ctx domain.Context) ([]domain.Category, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetAllCategories", nil)
	}

	categories, err := s.repo.GetAllCategories(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao buscar todas as categorias no repositório.", err)
		return nil, err
	}

	return categories, nil
}

// UpdateCategory atualiza uma categoria existente.
func (s *Service) UpdateCategory(ctx domain.Context, category domain.Category) (domain.Category, error) {
	s.logger.Debug("Iniciando atualização de categoria no serviço.", map[string]interface{}{"id": category.ID})

	if _, err := uuid.Parse(category.ID); err != nil {
		return domain.Category{}, apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
	}

	if err := s.validateCategoryName(category.Name); err != nil {
		return domain.Category{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para UpdateCategory", nil)
	}

	updatedCategory, err := s.repo.UpdateCategory(ctxGo, category)
	if err != nil {
		s.logger.Error("Falha ao atualizar categoria no repositório.", err)
		return domain.Category{}, err
	}

	s.logger.Info("Categoria atualizada com sucesso.", map[string]interface{}{"id": updatedCategory.ID})
	return updatedCategory, nil
}

// DeleteCategory remove uma categoria. A exclusão é recusada pelo repositório
// enquanto houver produtos associados.
func (s *Service) DeleteCategory(ctx domain.Context, id string) error {
	s.logger.Debug("Iniciando exclusão de categoria no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para DeleteCategory", nil)
	}

	if err := s.repo.DeleteCategory(ctxGo, id); err != nil {
		s.logger.Error("Falha ao deletar categoria no repositório.", err)
		return err
	}

	s.logger.Info("Categoria deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// validateCategoryName é uma função auxiliar para validar o nome da categoria.
func (s *Service) validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.NewValidationError("O nome da categoria não pode ser vazio.")
	}
	if len(name) > 100 {
		return apperror.NewValidationError("O nome da categoria deve ter no máximo 100 caracteres.")
	}
	return nil
}
