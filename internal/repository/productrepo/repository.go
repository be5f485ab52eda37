package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stocktrack/internal/domain"
	"stocktrack/internal/errors"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/repository/inventoryrepo"
)

// Códigos de erro do PostgreSQL relevantes para o catálogo.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Chave de cache para produtos (estratégia Cache-Aside).
const productCacheKey = "product:%s"

// ProductRepository implementa a persistência de Produtos no PostgreSQL,
// com leitura Cache-Aside via Redis.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório de Produtos.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.logger.Debug("Iniciando Save de produto no repositório.", map[string]interface{}{"name": product.Name, "sku": product.SKU})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
        INSERT INTO products (id, sku, name, description, price, category_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		product.ID, product.SKU, product.Name, product.Description,
		product.Price, product.CategoryID, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case uniqueViolation:
				return domain.Product{}, errors.NewConflictError(fmt.Sprintf("Já existe um produto com o SKU %s.", skuLabel(product.SKU)))
			case foreignKeyViolation:
				return domain.Product{}, errors.NewNotFoundError("A categoria referenciada não existe.")
			}
		}
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao inserir produto", err)
	}

	r.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": product.ID, "name": product.Name})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Se a desserialização falhar, segue para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (e.g., conexão perdida): degrada para o DB.
		r.logger.Warn("Falha ao ler produto do cache Redis.", map[string]interface{}{"id": id, "error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := `
        SELECT id, sku, name, description, price, category_id, created_at, updated_at
        FROM products
        WHERE id = $1`

	product, err = scanProduct(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto", err)
	}

	// 3. Cache-Aside (WRITE): popula o cache para futuras requisições.
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll busca produtos aplicando o filtro informado.
// O filtro WithoutInventory deriva "produtos sem inventário" por consulta ao
// Ledger (anti-join), em vez de confiar em qualquer flag denormalizada.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.logger.Debug("Iniciando FindAll de produtos no repositório.", map[string]interface{}{
		"category_id":       filter.CategoryID,
		"without_inventory": filter.WithoutInventory,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT p.id, p.sku, p.name, p.description, p.price, p.category_id, p.created_at, p.updated_at
        FROM products p
        WHERE 1=1`
	var args []interface{}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if filter.WithoutInventory {
		query += " AND NOT EXISTS (SELECT 1 FROM inventory i WHERE i.product_id = p.id)"
	}
	query += " ORDER BY p.created_at, p.id"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de produtos.", err)
		return nil, errors.NewDBError("Falha ao buscar produtos", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear produto na iteração de FindAll.", err)
			return nil, errors.NewDBError("Falha ao mapear produtos do DB", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de produtos.", err)
		return nil, errors.NewDBError("Erro após iteração de produtos", err)
	}

	return products, nil
}

// Update atualiza um produto existente e invalida a entrada de cache.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.logger.Debug("Iniciando Update de produto no repositório.", map[string]interface{}{"id": product.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE products
        SET sku = $1, name = $2, description = $3, price = $4, category_id = $5, updated_at = $6
        WHERE id = $7
        RETURNING id, sku, name, description, price, category_id, created_at, updated_at`

	updated, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query,
		product.SKU, product.Name, product.Description, product.Price,
		product.CategoryID, product.UpdatedAt, product.ID,
	))
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para atualização.", product.ID))
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case uniqueViolation:
				return domain.Product{}, errors.NewConflictError(fmt.Sprintf("Já existe um produto com o SKU %s.", skuLabel(product.SKU)))
			case foreignKeyViolation:
				return domain.Product{}, errors.NewNotFoundError("A categoria referenciada não existe.")
			}
		}
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao atualizar produto", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, product.ID))
	// A listagem de estoque baixo embute o produto: mutações do catálogo também a invalidam.
	inventoryrepo.InvalidateLowStock(ctxTimeout, r.Cache, r.logger)

	r.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"id": updated.ID})
	return updated, nil
}

// Delete remove um produto pelo ID e invalida a entrada de cache.
// O registro de inventário do produto, se houver, é removido em cascata pelo DB.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando Delete de produto no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar produto do DB.", err)
		return errors.NewDBError("Falha ao deletar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para exclusão.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id))
	// A exclusão cascateia para o registro de inventário: a listagem de estoque
	// baixo cacheada pode conter o registro removido.
	inventoryrepo.InvalidateLowStock(ctxTimeout, r.Cache, r.logger)

	r.logger.Info("Produto deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// rowScanner abstrai *sql.Row e *sql.Rows para o mapeamento de produtos.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct mapeia uma linha do DB para a struct domain.Product,
// tratando o SKU e a categoria nullable.
func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	var sku, categoryID sql.NullString

	err := row.Scan(
		&product.ID, &sku, &product.Name, &product.Description,
		&product.Price, &categoryID, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}

	if sku.Valid {
		product.SKU = &sku.String
	}
	if categoryID.Valid {
		product.CategoryID = &categoryID.String
	}
	return product, nil
}

// skuLabel formata o SKU opcional para mensagens de erro.
func skuLabel(sku *string) string {
	if sku == nil {
		return ""
	}
	return *sku
}
