package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa o item principal do catálogo (a Entidade).
// Um Produto existe independentemente de ter ou não inventário rastreado;
// quem responde "tem inventário?" é o Ledger, por consulta, nunca um campo
// denormalizado aqui.
type Product struct {
	ID          string          `json:"id"`
	SKU         *string         `json:"sku,omitempty"` // Stock Keeping Unit: opcional, único quando informado
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *string         `json:"category_id,omitempty"` // Referência opcional (nullable) à Categoria
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductFilter define os parâmetros de busca de produtos.
// WithoutInventory atende a camada de apresentação: lista os produtos que
// ainda não possuem registro de inventário.
type ProductFilter struct {
	CategoryID       string
	WithoutInventory bool
}

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context" no domínio.
type Context interface{}
