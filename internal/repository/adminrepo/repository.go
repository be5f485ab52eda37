package adminrepo

import (
	"context"
	"database/sql"
	"time"

	"stocktrack/internal/errors"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/repository/inventoryrepo"
)

// AdminRepository implementa a limpeza administrativa de dados no PostgreSQL.
type AdminRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAdminRepository cria e retorna uma nova instância do Repositório Administrativo.
func NewAdminRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *AdminRepository {
	return &AdminRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CleanupAll remove todos os dados em uma única transação, na ordem segura
// para as FKs (inventário → produtos → categorias). Tudo-ou-nada: qualquer
// falha desfaz a limpeza inteira e nenhuma remoção parcial é observável.
func (r *AdminRepository) CleanupAll(ctx context.Context) (inventoryDeleted, productsDeleted, categoriesDeleted int64, err error) {
	r.logger.Debug("Iniciando CleanupAll no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de limpeza de dados.", err)
		return 0, 0, 0, errors.NewDBError("Falha ao iniciar transação de limpeza", err)
	}
	defer tx.Rollback()

	if inventoryDeleted, err = deleteAll(ctxTimeout, tx, `DELETE FROM inventory`); err != nil {
		r.logger.Error("Falha ao limpar inventário.", err)
		return 0, 0, 0, errors.NewDBError("Falha ao limpar inventário", err)
	}
	if productsDeleted, err = deleteAll(ctxTimeout, tx, `DELETE FROM products`); err != nil {
		r.logger.Error("Falha ao limpar produtos.", err)
		return 0, 0, 0, errors.NewDBError("Falha ao limpar produtos", err)
	}
	if categoriesDeleted, err = deleteAll(ctxTimeout, tx, `DELETE FROM categories`); err != nil {
		r.logger.Error("Falha ao limpar categorias.", err)
		return 0, 0, 0, errors.NewDBError("Falha ao limpar categorias", err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de limpeza de dados.", commitErr)
		return 0, 0, 0, errors.NewDBError("Falha ao commitar transação de limpeza", commitErr)
	}

	inventoryrepo.InvalidateLowStock(ctxTimeout, r.Cache, r.logger)

	r.logger.Info("Limpeza de dados persistida.", map[string]interface{}{
		"inventory_deleted":  inventoryDeleted,
		"products_deleted":   productsDeleted,
		"categories_deleted": categoriesDeleted,
	})
	return inventoryDeleted, productsDeleted, categoriesDeleted, nil
}

// deleteAll executa um DELETE dentro da transação e devolve o total removido.
func deleteAll(ctx context.Context, tx *sql.Tx, query string) (int64, error) {
	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
