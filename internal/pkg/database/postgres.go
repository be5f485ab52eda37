package database

import (
	"database/sql"
	"fmt"
	"time"

	// Driver pq para PostgreSQL
	_ "github.com/lib/pq"
)

// NewPostgresDB inicializa e configura o pool de conexões com o PostgreSQL.
// Retorna a conexão *sql.DB pronta para uso.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {

	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	// Testar a conexão imediatamente: garante que as credenciais e o servidor
	// estão corretos antes de a aplicação começar a servir.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	// Configuração do Connection Pool.
	// O bloqueio por registro (SELECT ... FOR UPDATE) nos ajustes de estoque
	// segura conexões durante a transação; o pool precisa de folga para que
	// ajustes em registros diferentes prossigam em paralelo.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return db, nil
}
