package domain

import (
	"time"
)

// Category representa uma categoria do catálogo, usada para agrupar Produtos.
// A relação é opcional: um Produto pode existir sem Categoria.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
