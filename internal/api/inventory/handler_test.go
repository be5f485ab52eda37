package inventory_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stocktrack/internal/api/inventory"
	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// MockInventoryService é uma implementação mock da interface InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CreateInventory(ctx domain.Context, req domain.CreateInventoryRequest) (domain.Inventory, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) GetInventoryByID(ctx domain.Context, id string) (domain.Inventory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) GetInventoryByProduct(ctx domain.Context, productID string) (domain.Inventory, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) GetAllInventory(ctx domain.Context) ([]domain.Inventory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) GetLowStockItems(ctx domain.Context) ([]domain.LowStockItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.LowStockItem), args.Error(1)
}

func (m *MockInventoryService) UpdateInventory(ctx domain.Context, id string, req domain.UpdateInventoryRequest) (domain.Inventory, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) AddStock(ctx domain.Context, productID string, amount int) (domain.Inventory, error) {
	args := m.Called(ctx, productID, amount)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) RemoveStock(ctx domain.Context, productID string, amount int) (domain.Inventory, error) {
	args := m.Called(ctx, productID, amount)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) SetStock(ctx domain.Context, productID string, quantity int) (domain.Inventory, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryService) DeleteInventory(ctx domain.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestLowStockHandler testa GET /v1/inventory/low-stock: status e corpo para
// listas preenchidas e vazias.
func TestLowStockHandler(t *testing.T) {
	testCases := []struct {
		name               string
		mockSetup          func(m *MockInventoryService)
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Sucesso com itens em estoque baixo",
			mockSetup: func(m *MockInventoryService) {
				m.On("GetLowStockItems", mock.Anything).Return([]domain.LowStockItem{
					{Inventory: domain.Inventory{ID: "inv-1", Quantity: 4, MinStockLevel: 5}, Shortage: 1},
				}, nil)
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []domain.LowStockItem
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp, 1)
				assert.Equal(t, 1, resp[0].Shortage)
			},
		},
		{
			name: "Sucesso com lista vazia (JSON [] e não null)",
			mockSetup: func(m *MockInventoryService) {
				m.On("GetLowStockItems", mock.Anything).Return([]domain.LowStockItem(nil), nil)
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
			},
		},
		{
			name: "Erro interno do serviço",
			mockSetup: func(m *MockInventoryService) {
				m.On("GetLowStockItems", mock.Anything).Return([]domain.LowStockItem(nil),
					apperror.NewInternalError("Falha no DB.", nil))
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp domain.ErrorResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "INTERNAL_ERROR", resp.Category)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := new(MockInventoryService)
			tc.mockSetup(mockSvc)
			h := inventory.NewHandler(mockSvc, logger.NewLogger("error"))

			req := httptest.NewRequest(http.MethodGet, "/v1/inventory/low-stock", nil)
			rec := httptest.NewRecorder()

			h.LowStockHandler(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// TestInventoryByProductHandler_Routes testa o despacho das rotas por produto:
// busca, sobrescrita absoluta, adição e remoção de estoque.
func TestInventoryByProductHandler_Routes(t *testing.T) {
	productID := uuid.New().String()
	record := domain.Inventory{ID: uuid.New().String(), ProductID: productID, Quantity: 13, MinStockLevel: 5}

	testCases := []struct {
		name               string
		method             string
		path               string
		body               string
		mockSetup          func(m *MockInventoryService)
		expectedStatusCode int
	}{
		{
			name:   "GET busca o registro do produto",
			method: http.MethodGet,
			path:   "/v1/inventory/product/" + productID,
			mockSetup: func(m *MockInventoryService) {
				m.On("GetInventoryByProduct", mock.Anything, productID).Return(record, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:   "PUT sobrescreve a quantidade",
			method: http.MethodPut,
			path:   "/v1/inventory/product/" + productID,
			body:   `{"quantity": 13}`,
			mockSetup: func(m *MockInventoryService) {
				m.On("SetStock", mock.Anything, productID, 13).Return(record, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:   "PUT /add adiciona estoque",
			method: http.MethodPut,
			path:   "/v1/inventory/product/" + productID + "/add",
			body:   `{"quantity": 3}`,
			mockSetup: func(m *MockInventoryService) {
				m.On("AddStock", mock.Anything, productID, 3).Return(record, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:   "PUT /remove com estoque insuficiente responde 409",
			method: http.MethodPut,
			path:   "/v1/inventory/product/" + productID + "/remove",
			body:   `{"quantity": 5}`,
			mockSetup: func(m *MockInventoryService) {
				m.On("RemoveStock", mock.Anything, productID, 5).Return(domain.Inventory{},
					apperror.NewInsufficientStockError("Quantidade disponível (2) é menor que a solicitada (5)."))
			},
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "PUT com payload inválido responde 400",
			method:             http.MethodPut,
			path:               "/v1/inventory/product/" + productID + "/add",
			body:               `{nope`,
			mockSetup:          func(m *MockInventoryService) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Sub-rota desconhecida responde 404",
			method:             http.MethodPut,
			path:               "/v1/inventory/product/" + productID + "/duplicate",
			body:               `{"quantity": 1}`,
			mockSetup:          func(m *MockInventoryService) {},
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := new(MockInventoryService)
			tc.mockSetup(mockSvc)
			h := inventory.NewHandler(mockSvc, logger.NewLogger("error"))

			var body *strings.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			rec := httptest.NewRecorder()

			h.InventoryByProductHandler(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

// TestInventoryHandler_Create testa POST /v1/inventory: criação e conflito de
// registro duplicado (relação 1:1).
func TestInventoryHandler_Create(t *testing.T) {
	productID := uuid.New().String()

	t.Run("Criação bem-sucedida responde 201", func(t *testing.T) {
		mockSvc := new(MockInventoryService)
		created := domain.Inventory{ID: uuid.New().String(), ProductID: productID, Quantity: 10, MinStockLevel: 5}
		mockSvc.On("CreateInventory", mock.Anything, domain.CreateInventoryRequest{
			ProductID: productID, Quantity: 10, MinStockLevel: 5,
		}).Return(created, nil)

		h := inventory.NewHandler(mockSvc, logger.NewLogger("error"))
		req := httptest.NewRequest(http.MethodPost, "/v1/inventory",
			strings.NewReader(`{"product_id": "`+productID+`", "quantity": 10, "min_stock_level": 5}`))
		rec := httptest.NewRecorder()

		h.InventoryHandler(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp domain.Inventory
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 10, resp.Quantity)
		mockSvc.AssertExpectations(t)
	})

	t.Run("Registro duplicado responde 409", func(t *testing.T) {
		mockSvc := new(MockInventoryService)
		mockSvc.On("CreateInventory", mock.Anything, mock.AnythingOfType("domain.CreateInventoryRequest")).
			Return(domain.Inventory{}, apperror.NewConflictError("Já existe inventário para o produto."))

		h := inventory.NewHandler(mockSvc, logger.NewLogger("error"))
		req := httptest.NewRequest(http.MethodPost, "/v1/inventory",
			strings.NewReader(`{"product_id": "`+productID+`", "quantity": 1}`))
		rec := httptest.NewRecorder()

		h.InventoryHandler(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp domain.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "CONFLICT", resp.Category)
		mockSvc.AssertExpectations(t)
	})
}
