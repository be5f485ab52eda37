package domain

import "time"

// Inventory representa o registro de inventário de um Produto (relação 1:1).
// Invariantes: Quantity >= 0 e MinStockLevel >= 0, sempre; LastUpdated é
// renovado a cada mutação de Quantity ou MinStockLevel. Somente o Ledger
// (inventoryrepo/inventoryservice) pode alterar Quantity.
type Inventory struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Product       Product   `json:"product"` // Produto embutido nas leituras
	Quantity      int       `json:"quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
}

// StockAdjustmentRequest é o payload esperado para as requisições de ajuste
// de estoque (add/remove) e de sobrescrita absoluta (set).
type StockAdjustmentRequest struct {
	Quantity int `json:"quantity"`
}

// CreateInventoryRequest é o payload de criação de um registro de inventário.
type CreateInventoryRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
}

// UpdateInventoryRequest é o payload de atualização de um registro.
// Campos omitidos (nil) mantêm o valor armazenado; campos fornecidos são
// sobrescritos integralmente.
type UpdateInventoryRequest struct {
	Quantity      *int `json:"quantity"`
	MinStockLevel *int `json:"min_stock_level"`
}

// LowStockItem é um registro de inventário classificado como "estoque baixo",
// enriquecido com a falta (Shortage) para sugerir reposição.
type LowStockItem struct {
	Inventory
	Shortage int `json:"shortage"`
}

// IsLowStock é o classificador de estoque baixo: predicado puro, sem estado.
// A fronteira Quantity == MinStockLevel classifica como baixo.
func IsLowStock(inv Inventory) bool {
	return inv.Quantity <= inv.MinStockLevel
}

// Shortage calcula a falta de estoque: a diferença não-negativa entre o nível
// mínimo e a quantidade atual. Nunca retorna valor negativo.
func Shortage(inv Inventory) int {
	if inv.MinStockLevel <= inv.Quantity {
		return 0
	}
	return inv.MinStockLevel - inv.Quantity
}

// FilterLowStock filtra os registros com estoque baixo preservando a ordem
// relativa da sequência de entrada. A classificação é sempre re-derivada dos
// dados atuais; não existe transição "virou estoque baixo" a rastrear.
func FilterLowStock(records []Inventory) []Inventory {
	var low []Inventory
	for _, inv := range records {
		if IsLowStock(inv) {
			low = append(low, inv)
		}
	}
	return low
}
