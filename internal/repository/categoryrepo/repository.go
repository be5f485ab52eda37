package categoryrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stocktrack/internal/domain"
	"stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// Código de erro do PostgreSQL para violação de restrição UNIQUE.
const uniqueViolation = "23505"

// CategoryRepository implementa a persistência de Categorias no PostgreSQL.
type CategoryRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCategoryRepository cria e retorna uma nova instância do Repositório de Categorias.
func NewCategoryRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateCategory insere uma nova categoria no banco de dados.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	r.logger.Debug("Iniciando CreateCategory no repositório.", map[string]interface{}{"name": category.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
        INSERT INTO categories (id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, name, description, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		category.ID, category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	).Scan(
		&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			r.logger.Warn("Tentativa de criar categoria com nome duplicado.", map[string]interface{}{"name": category.Name})
			return domain.Category{}, errors.NewConflictError(fmt.Sprintf("Já existe uma categoria com o nome '%s'.", category.Name))
		}
		r.logger.Error("Falha ao inserir categoria no DB.", err)
		return domain.Category{}, errors.NewDBError("Falha ao criar categoria", err)
	}

	r.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return category, nil
}

// GetCategoryByID busca uma categoria pelo ID.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	r.logger.Debug("Iniciando GetCategoryByID no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, description, created_at, updated_at
        FROM categories
        WHERE id = $1`

	var category domain.Category
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Category{}, errors.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar categoria no DB.", err)
		return domain.Category{}, errors.NewDBError("Falha ao buscar categoria", err)
	}

	return category, nil
}

// GetAllCategories busca todas as categorias, em ordem estável de criação.
func (r *CategoryRepository) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	r.logger.Debug("Iniciando GetAllCategories no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, description, created_at, updated_at
        FROM categories
        ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllCategories query.", err)
		return nil, errors.NewDBError("Falha ao buscar todas as categorias", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		err := rows.Scan(
			&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Falha ao mapear categoria na iteração de GetAllCategories.", err)
			return nil, errors.NewDBError("Falha ao mapear categorias do DB", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de categorias.", err)
		return nil, errors.NewDBError("Erro após iteração de categorias", err)
	}

	r.logger.Debug("GetAllCategories concluído.", map[string]interface{}{"total": len(categories)})
	return categories, nil
}

// UpdateCategory atualiza uma categoria existente.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	r.logger.Debug("Iniciando UpdateCategory no repositório.", map[string]interface{}{"id": category.ID, "name": category.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	category.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE categories
        SET name = $1, description = $2, updated_at = $3
        WHERE id = $4
        RETURNING id, name, description, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		category.Name, category.Description, category.UpdatedAt, category.ID,
	).Scan(
		&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Category{}, errors.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada para atualização.", category.ID))
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return domain.Category{}, errors.NewConflictError(fmt.Sprintf("Já existe uma categoria com o nome '%s'.", category.Name))
		}
		r.logger.Error("Falha ao atualizar categoria no DB.", err)
		return domain.Category{}, errors.NewDBError("Falha ao atualizar categoria", err)
	}

	r.logger.Info("Categoria atualizada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return category, nil
}

// DeleteCategory remove uma categoria pelo ID.
// A exclusão é recusada enquanto houver produtos referenciando a categoria;
// o chamador deve reatribuir ou excluir os produtos antes.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando DeleteCategory no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var productCount int
	countQuery := `SELECT COUNT(1) FROM products WHERE category_id = $1`
	if err := r.DB.QueryRowContext(ctxTimeout, countQuery, id).Scan(&productCount); err != nil {
		r.logger.Error("Falha ao verificar produtos da categoria.", err)
		return errors.NewDBError("Falha ao verificar produtos da categoria", err)
	}
	if productCount > 0 {
		r.logger.Warn("Exclusão de categoria recusada: ainda há produtos associados.", map[string]interface{}{"id": id, "products": productCount})
		return errors.NewConflictError("A categoria possui produtos associados. Exclua ou reatribua os produtos antes.")
	}

	query := `
        DELETE FROM categories
        WHERE id = $1`

	result, err := r.DB.ExecContext(ctxTimeout, query, id)
	if err != nil {
		r.logger.Error("Falha ao deletar categoria do DB.", err)
		return errors.NewDBError("Falha ao deletar categoria", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após DeleteCategory.", err)
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada para exclusão.", id))
	}

	r.logger.Info("Categoria deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}
