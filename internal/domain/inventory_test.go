package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stocktrack/internal/domain"
)

// TestIsLowStock_Boundary testa a fronteira do classificador: quantidade igual
// ao nível mínimo já é considerada estoque baixo.
func TestIsLowStock_Boundary(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		minLevel int
		expected bool
	}{
		{"abaixo do mínimo", 4, 5, true},
		{"igual ao mínimo", 5, 5, true},
		{"acima do mínimo", 6, 5, false},
		{"zerado com mínimo zero", 0, 0, true},
		{"estoque alto", 120, 20, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := domain.Inventory{Quantity: tc.quantity, MinStockLevel: tc.minLevel}
			assert.Equal(t, tc.expected, domain.IsLowStock(inv))
		})
	}
}

// TestShortage_NeverNegative garante que a falta sugerida nunca é negativa.
func TestShortage_NeverNegative(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		minLevel int
		expected int
	}{
		{"falta de 1", 4, 5, 1},
		{"sem falta na fronteira", 5, 5, 0},
		{"estoque acima do mínimo", 10, 5, 0},
		{"estoque zerado", 0, 8, 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := domain.Inventory{Quantity: tc.quantity, MinStockLevel: tc.minLevel}
			assert.Equal(t, tc.expected, domain.Shortage(inv))
		})
	}
}

// TestFilterLowStock_PreservesOrder testa que o filtro mantém a ordem relativa
// da sequência de entrada e seleciona apenas os registros em estoque baixo.
func TestFilterLowStock_PreservesOrder(t *testing.T) {
	records := []domain.Inventory{
		{ID: "a", Quantity: 10, MinStockLevel: 5},
		{ID: "b", Quantity: 3, MinStockLevel: 5},
		{ID: "c", Quantity: 5, MinStockLevel: 5},
		{ID: "d", Quantity: 50, MinStockLevel: 10},
		{ID: "e", Quantity: 0, MinStockLevel: 1},
	}

	low := domain.FilterLowStock(records)

	assert.Len(t, low, 3)
	assert.Equal(t, "b", low[0].ID)
	assert.Equal(t, "c", low[1].ID)
	assert.Equal(t, "e", low[2].ID)
}

// TestFilterLowStock_Empty testa a entrada vazia e a entrada sem estoque baixo.
func TestFilterLowStock_Empty(t *testing.T) {
	assert.Empty(t, domain.FilterLowStock(nil))
	assert.Empty(t, domain.FilterLowStock([]domain.Inventory{
		{ID: "a", Quantity: 10, MinStockLevel: 5},
	}))
}
