package inventoryrepo

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
)

// Códigos de erro do PostgreSQL relevantes para o Ledger.
const (
	uniqueViolation     = "23505" // product_id UNIQUE: no máximo um registro por produto
	foreignKeyViolation = "23503" // product_id referencia um produto inexistente
)

// LowStockCacheKey é a chave do cache da listagem de estoque baixo.
// Toda mutação bem-sucedida do Ledger invalida esta chave: a classificação é
// re-derivada na próxima leitura, nunca remendada incrementalmente. Exportada
// porque a listagem embute o produto: mutações do catálogo também a invalidam
// (via InvalidateLowStock).
const LowStockCacheKey = "inventory:low-stock"

// selectInventory é a projeção padrão do Ledger: o registro com o Produto embutido.
const selectInventory = `
        SELECT i.id, i.product_id, i.quantity, i.min_stock_level, i.created_at, i.last_updated,
               p.id, p.sku, p.name, p.description, p.price, p.category_id, p.created_at, p.updated_at
        FROM inventory i
        JOIN products p ON p.id = i.product_id`

// InventoryRepository implementa a persistência do Ledger de Inventário no
// PostgreSQL. É o único componente autorizado a mutar quantity.
type InventoryRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewInventoryRepository cria e retorna uma nova instância do Repositório de Inventário.
func NewInventoryRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *InventoryRepository {
	return &InventoryRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Create insere um novo registro de inventário para um produto.
// A relação 1:1 é imposta pela restrição UNIQUE de product_id: criar um
// segundo registro para o mesmo produto falha com conflito, e o estado
// permanece inalterado.
func (r *InventoryRepository) Create(ctx context.Context, inv domain.Inventory) (domain.Inventory, error) {
	r.logger.Debug("Iniciando Create de inventário no repositório.", map[string]interface{}{
		"product_id": inv.ProductID,
		"quantity":   inv.Quantity,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.LastUpdated = now

	query := `
        INSERT INTO inventory (id, product_id, quantity, min_stock_level, created_at, last_updated)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		inv.ID, inv.ProductID, inv.Quantity, inv.MinStockLevel, inv.CreatedAt, inv.LastUpdated,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case uniqueViolation:
				r.logger.Warn("Tentativa de criar inventário duplicado para o produto.", map[string]interface{}{"product_id": inv.ProductID})
				return domain.Inventory{}, errors.NewConflictError(fmt.Sprintf("Já existe inventário para o produto %s. Edite o registro existente.", inv.ProductID))
			case foreignKeyViolation:
				return domain.Inventory{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", inv.ProductID))
			}
		}
		r.logger.Error("Falha ao inserir inventário no DB.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao criar inventário", err)
	}

	r.invalidateLowStock(ctxTimeout)

	created, err := r.FindByID(ctx, inv.ID)
	if err != nil {
		return domain.Inventory{}, err
	}

	r.logger.Info("Inventário criado com sucesso.", map[string]interface{}{"id": created.ID, "product_id": created.ProductID})
	return created, nil
}

// FindByID busca um registro de inventário pelo ID, com o produto embutido.
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (domain.Inventory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	inv, err := scanInventory(r.DB.QueryRowContext(ctxTimeout, selectInventory+` WHERE i.id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Inventory{}, errors.NewNotFoundError(fmt.Sprintf("Inventário com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar inventário no DB.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao buscar inventário", err)
	}
	return inv, nil
}

// FindByProductID busca o registro de inventário de um produto.
func (r *InventoryRepository) FindByProductID(ctx context.Context, productID string) (domain.Inventory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	inv, err := scanInventory(r.DB.QueryRowContext(ctxTimeout, selectInventory+` WHERE i.product_id = $1`, productID))
	if err == sql.ErrNoRows {
		return domain.Inventory{}, errors.NewNotFoundError(fmt.Sprintf("Inventário não encontrado para o produto %s.", productID))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar inventário por produto no DB.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao buscar inventário por produto", err)
	}
	return inv, nil
}

// FindAll busca todos os registros de inventário em ordem estável de criação.
func (r *InventoryRepository) FindAll(ctx context.Context) ([]domain.Inventory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	return r.queryInventories(ctxTimeout, selectInventory+` ORDER BY i.created_at, i.id`)
}

// FindLowStock busca os registros com estoque baixo (quantity <= min_stock_level),
// na mesma ordem relativa de FindAll, com Cache-Aside sobre a listagem completa.
func (r *InventoryRepository) FindLowStock(ctx context.Context) ([]domain.Inventory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, LowStockCacheKey)
	if err == nil {
		var records []domain.Inventory
		if json.Unmarshal([]byte(cachedData), &records) == nil {
			return records, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler listagem de estoque baixo do cache.", map[string]interface{}{"error": err.Error()})
	}

	// 2. Re-derivar a classificação a partir dos dados atuais
	records, err := r.queryInventories(ctxTimeout,
		selectInventory+` WHERE i.quantity <= i.min_stock_level ORDER BY i.created_at, i.id`)
	if err != nil {
		return nil, err
	}

	// 3. Popular o cache (invalidado por qualquer mutação do Ledger)
	if data, marshalErr := json.Marshal(records); marshalErr == nil {
		r.Cache.Set(ctxTimeout, LowStockCacheKey, data, r.CacheTTL)
	}

	return records, nil
}

// Update sobrescreve os campos fornecidos (quantity e/ou min_stock_level) de um
// registro. Campos omitidos (nil) mantêm o valor armazenado. A escrita é um
// único statement: renovação de last_updated e sobrescrita são indivisíveis.
func (r *InventoryRepository) Update(ctx context.Context, id string, quantity, minStockLevel *int) (domain.Inventory, error) {
	r.logger.Debug("Iniciando Update de inventário no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE inventory
        SET quantity = COALESCE($1, quantity),
            min_stock_level = COALESCE($2, min_stock_level),
            last_updated = $3
        WHERE id = $4`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		nullableInt(quantity), nullableInt(minStockLevel), time.Now().UTC(), id,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar inventário no DB.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao atualizar inventário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Inventory{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Inventory{}, errors.NewNotFoundError(fmt.Sprintf("Inventário com ID %s não encontrado para atualização.", id))
	}

	r.invalidateLowStock(ctxTimeout)

	return r.FindByID(ctx, id)
}

// AdjustQuantity aplica um delta à quantidade do registro de um produto, de
// forma atômica por registro: a leitura da quantidade atual e a escrita da
// nova são um passo indivisível (transação + SELECT ... FOR UPDATE). Dois
// ajustes concorrentes no mesmo registro são serializados pelo bloqueio de
// linha; registros diferentes prosseguem em paralelo.
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, productID string, delta int) (domain.Inventory, error) {
	r.logger.Debug("Iniciando AdjustQuantity no repositório.", map[string]interface{}{
		"product_id": productID,
		"delta":      delta,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de ajuste de estoque.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro: nenhuma escrita parcial é observável

	// 1. Bloquear a linha do registro e ler a quantidade atual
	var inv domain.Inventory
	querySelect := `
        SELECT id, product_id, quantity, min_stock_level, created_at
        FROM inventory
        WHERE product_id = $1 FOR UPDATE`

	err = tx.QueryRowContext(ctxTimeout, querySelect, productID).Scan(
		&inv.ID, &inv.ProductID, &inv.Quantity, &inv.MinStockLevel, &inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Inventory{}, errors.NewNotFoundError(fmt.Sprintf("Inventário não encontrado para o produto %s.", productID))
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar inventário para ajuste.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao buscar inventário para ajuste", err)
	}

	// 2. Aplicar o delta, protegendo a invariante de não-negatividade
	newQuantity := inv.Quantity + delta
	if newQuantity < 0 {
		r.logger.Warn("Remoção recusada: estoque insuficiente.", map[string]interface{}{
			"product_id":       productID,
			"current_quantity": inv.Quantity,
			"delta":            delta,
		})
		return domain.Inventory{}, errors.NewInsufficientStockError(
			fmt.Sprintf("Quantidade disponível (%d) é menor que a solicitada (%d).", inv.Quantity, -delta))
	}

	// 3. Escrever a nova quantidade e renovar last_updated
	inv.LastUpdated = time.Now().UTC()
	queryUpdate := `
        UPDATE inventory
        SET quantity = $1, last_updated = $2
        WHERE id = $3`

	if _, err = tx.ExecContext(ctxTimeout, queryUpdate, newQuantity, inv.LastUpdated, inv.ID); err != nil {
		r.logger.Error("Falha ao atualizar quantidade do inventário.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao atualizar quantidade", err)
	}
	inv.Quantity = newQuantity

	// 4. Carregar o produto embutido ainda dentro da transação
	inv.Product, err = r.productInTx(ctxTimeout, tx, inv.ProductID)
	if err != nil {
		return domain.Inventory{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de ajuste de estoque.", commitErr)
		return domain.Inventory{}, errors.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.invalidateLowStock(ctxTimeout)

	r.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":   productID,
		"delta":        delta,
		"new_quantity": newQuantity,
	})
	return inv, nil
}

// SetQuantity sobrescreve a quantidade do registro de um produto com um valor
// absoluto, em um único statement (atômico por registro).
func (r *InventoryRepository) SetQuantity(ctx context.Context, productID string, quantity int) (domain.Inventory, error) {
	r.logger.Debug("Iniciando SetQuantity no repositório.", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE inventory
        SET quantity = $1, last_updated = $2
        WHERE product_id = $3`

	result, err := r.DB.ExecContext(ctxTimeout, query, quantity, time.Now().UTC(), productID)
	if err != nil {
		r.logger.Error("Falha ao sobrescrever quantidade do inventário.", err)
		return domain.Inventory{}, errors.NewDBError("Falha ao sobrescrever quantidade", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Inventory{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Inventory{}, errors.NewNotFoundError(fmt.Sprintf("Inventário não encontrado para o produto %s.", productID))
	}

	r.invalidateLowStock(ctxTimeout)

	return r.FindByProductID(ctx, productID)
}

// Delete remove um registro de inventário pelo ID.
// Nunca propaga a exclusão ao Produto.
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando Delete de inventário no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar inventário do DB.", err)
		return errors.NewDBError("Falha ao deletar inventário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Inventário com ID %s não encontrado para exclusão.", id))
	}

	r.invalidateLowStock(ctxTimeout)

	r.logger.Info("Inventário deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// --- Auxiliares ---

// InvalidateLowStock descarta a listagem de estoque baixo cacheada.
// Falhas de cache não derrubam a mutação: o TTL limita a janela de desatualização.
// É chamada por toda mutação do Ledger e, como a listagem embute o produto,
// também pelas mutações do catálogo e pela limpeza administrativa.
func InvalidateLowStock(ctx context.Context, client cache.Client, log logger.Logger) {
	if err := client.Delete(ctx, LowStockCacheKey); err != nil {
		log.Warn("Falha ao invalidar cache de estoque baixo.", map[string]interface{}{"error": err.Error()})
	}
}

// invalidateLowStock é o atalho interno do repositório.
func (r *InventoryRepository) invalidateLowStock(ctx context.Context) {
	InvalidateLowStock(ctx, r.Cache, r.logger)
}

// productInTx carrega o produto embutido dentro da transação de ajuste.
func (r *InventoryRepository) productInTx(ctx context.Context, tx *sql.Tx, productID string) (domain.Product, error) {
	var product domain.Product
	var sku, categoryID sql.NullString

	query := `
        SELECT id, sku, name, description, price, category_id, created_at, updated_at
        FROM products
        WHERE id = $1`

	err := tx.QueryRowContext(ctx, query, productID).Scan(
		&product.ID, &sku, &product.Name, &product.Description,
		&product.Price, &categoryID, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao carregar produto do inventário na transação.", err)
		return domain.Product{}, errors.NewDBError("Falha ao carregar produto do inventário", err)
	}
	if sku.Valid {
		product.SKU = &sku.String
	}
	if categoryID.Valid {
		product.CategoryID = &categoryID.String
	}
	return product, nil
}

// queryInventories executa uma consulta da projeção padrão e mapeia as linhas.
func (r *InventoryRepository) queryInventories(ctx context.Context, query string, args ...interface{}) ([]domain.Inventory, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar consulta de inventário.", err)
		return nil, errors.NewDBError("Falha ao buscar inventário", err)
	}
	defer rows.Close()

	var records []domain.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear inventário na iteração.", err)
			return nil, errors.NewDBError("Falha ao mapear inventário do DB", err)
		}
		records = append(records, inv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de inventário.", err)
		return nil, errors.NewDBError("Erro após iteração de inventário", err)
	}
	return records, nil
}

// rowScanner abstrai *sql.Row e *sql.Rows para o mapeamento de inventário.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanInventory mapeia uma linha da projeção padrão (registro + produto embutido).
func scanInventory(row rowScanner) (domain.Inventory, error) {
	var inv domain.Inventory
	var sku, categoryID sql.NullString

	err := row.Scan(
		&inv.ID, &inv.ProductID, &inv.Quantity, &inv.MinStockLevel, &inv.CreatedAt, &inv.LastUpdated,
		&inv.Product.ID, &sku, &inv.Product.Name, &inv.Product.Description,
		&inv.Product.Price, &categoryID, &inv.Product.CreatedAt, &inv.Product.UpdatedAt,
	)
	if err != nil {
		return domain.Inventory{}, err
	}

	if sku.Valid {
		inv.Product.SKU = &sku.String
	}
	if categoryID.Valid {
		inv.Product.CategoryID = &categoryID.String
	}
	return inv, nil
}

// nullableInt converte *int para o tipo aceito pelo driver em parâmetros COALESCE.
func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
