package inventoryservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/service/inventoryservice"
)

// MockInventoryRepository é uma implementação mock da interface InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Create(ctx context.Context, inv domain.Inventory) (domain.Inventory, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) FindByID(ctx context.Context, id string) (domain.Inventory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) FindByProductID(ctx context.Context, productID string) (domain.Inventory, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) FindAll(ctx context.Context) ([]domain.Inventory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) FindLowStock(ctx context.Context) ([]domain.Inventory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Update(ctx context.Context, id string, quantity, minStockLevel *int) (domain.Inventory, error) {
	args := m.Called(ctx, id, quantity, minStockLevel)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) AdjustQuantity(ctx context.Context, productID string, delta int) (domain.Inventory, error) {
	args := m.Called(ctx, productID, delta)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) SetQuantity(ctx context.Context, productID string, quantity int) (domain.Inventory, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestAddStock_Success testa a adição de estoque bem-sucedida: adicionar 3 a
// um registro {quantity: 10, min: 5} resulta em 13 e o item não fica em
// estoque baixo.
func TestAddStock_Success(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	updated := domain.Inventory{
		ID:            uuid.New().String(),
		ProductID:     productID,
		Quantity:      13,
		MinStockLevel: 5,
		LastUpdated:   time.Now(),
	}

	mockRepo.On("AdjustQuantity", mock.Anything, productID, 3).
		Return(updated, nil)

	ctx := context.Background()
	result, err := svc.AddStock(ctx, productID, 3)

	assert.NoError(t, err)
	assert.Equal(t, 13, result.Quantity)
	assert.False(t, domain.IsLowStock(result))
	mockRepo.AssertExpectations(t)
}

// TestAddStock_Fail_NonPositiveAmount testa que quantidades zero e negativas
// são rejeitadas antes de qualquer chamada ao repositório.
func TestAddStock_Fail_NonPositiveAmount(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	ctx := context.Background()

	for _, amount := range []int{0, -1} {
		_, err := svc.AddStock(ctx, productID, amount)

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
		assert.Contains(t, err.Error(), "positiva")
	}

	mockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// TestRemoveStock_Success testa uma remoção dentro do disponível.
func TestRemoveStock_Success(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	updated := domain.Inventory{
		ID:            uuid.New().String(),
		ProductID:     productID,
		Quantity:      5,
		MinStockLevel: 5,
		LastUpdated:   time.Now(),
	}

	// A remoção é traduzida para um delta negativo no repositório.
	mockRepo.On("AdjustQuantity", mock.Anything, productID, -5).
		Return(updated, nil)

	ctx := context.Background()
	result, err := svc.RemoveStock(ctx, productID, 5)

	assert.NoError(t, err)
	assert.Equal(t, 5, result.Quantity)
	mockRepo.AssertExpectations(t)
}

// TestRemoveStock_Fail_InsufficientStock testa a invariante central do Ledger:
// remover 5 de um registro com quantidade 2 falha e nada é alterado.
func TestRemoveStock_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()

	mockRepo.On("AdjustQuantity", mock.Anything, productID, -5).
		Return(domain.Inventory{}, apperror.NewInsufficientStockError("Disponível: 2, solicitado: 5."))

	ctx := context.Background()
	_, err := svc.RemoveStock(ctx, productID, 5)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	assert.Contains(t, err.Error(), "Disponível: 2")

	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus())
	assert.Equal(t, "INSUFFICIENT_STOCK", appErr.Category())
	mockRepo.AssertExpectations(t)
}

// TestRemoveStock_Fail_NonPositiveAmount testa que a remoção de quantidade
// zero ou negativa é rejeitada antes de tocar o repositório.
func TestRemoveStock_Fail_NonPositiveAmount(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	ctx := context.Background()

	for _, amount := range []int{0, -1} {
		_, err := svc.RemoveStock(ctx, productID, amount)

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
		assert.Contains(t, err.Error(), "positiva")
	}

	mockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// TestCreateInventory_Fail_Duplicate testa a relação 1:1: a segunda criação
// para o mesmo produto falha com conflito.
func TestCreateInventory_Fail_Duplicate(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.Inventory")).
		Return(domain.Inventory{}, apperror.NewConflictError("Já existe registro de inventário para este produto."))

	ctx := context.Background()
	_, err := svc.CreateInventory(ctx, domain.CreateInventoryRequest{
		ProductID:     productID,
		Quantity:      10,
		MinStockLevel: 5,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestCreateInventory_Fail_NegativeValues testa a rejeição de quantidade e
// nível mínimo negativos na criação.
func TestCreateInventory_Fail_NegativeValues(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	ctx := context.Background()

	_, err := svc.CreateInventory(ctx, domain.CreateInventoryRequest{ProductID: productID, Quantity: -1})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.CreateInventory(ctx, domain.CreateInventoryRequest{ProductID: productID, MinStockLevel: -3})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestCreateInventory_Fail_UnknownProduct testa a criação referenciando um
// produto inexistente.
func TestCreateInventory_Fail_UnknownProduct(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.Inventory")).
		Return(domain.Inventory{}, apperror.NewNotFoundError("Produto não encontrado para criação de inventário."))

	ctx := context.Background()
	_, err := svc.CreateInventory(ctx, domain.CreateInventoryRequest{ProductID: productID, Quantity: 1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestGetLowStockItems_Success testa a listagem de estoque baixo: um registro
// {quantity: 4, min: 5} aparece com falta (shortage) 1.
func TestGetLowStockItems_Success(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	low := []domain.Inventory{
		{ID: uuid.New().String(), ProductID: uuid.New().String(), Quantity: 4, MinStockLevel: 5},
		{ID: uuid.New().String(), ProductID: uuid.New().String(), Quantity: 0, MinStockLevel: 10},
	}

	mockRepo.On("FindLowStock", mock.Anything).Return(low, nil)

	ctx := context.Background()
	items, err := svc.GetLowStockItems(ctx)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Shortage)
	assert.Equal(t, 10, items[1].Shortage)
	mockRepo.AssertExpectations(t)
}

// TestUpdateInventory_Fail_NegativeFields testa a sobrescrita parcial: campos
// fornecidos com valor negativo são rejeitados antes de qualquer escrita.
func TestUpdateInventory_Fail_NegativeFields(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	negative := -2
	ctx := context.Background()

	_, err := svc.UpdateInventory(ctx, id, domain.UpdateInventoryRequest{Quantity: &negative})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.UpdateInventory(ctx, id, domain.UpdateInventoryRequest{MinStockLevel: &negative})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateInventory_Success_PartialFields testa que apenas os campos
// fornecidos são repassados ao repositório.
func TestUpdateInventory_Success_PartialFields(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	newMin := 8
	updated := domain.Inventory{ID: id, Quantity: 10, MinStockLevel: newMin}

	mockRepo.On("Update", mock.Anything, id, (*int)(nil), &newMin).
		Return(updated, nil)

	ctx := context.Background()
	result, err := svc.UpdateInventory(ctx, id, domain.UpdateInventoryRequest{MinStockLevel: &newMin})

	assert.NoError(t, err)
	assert.Equal(t, 8, result.MinStockLevel)
	assert.Equal(t, 10, result.Quantity)
	mockRepo.AssertExpectations(t)
}

// TestSetStock_Fail_Negative testa que a sobrescrita absoluta rejeita valores
// negativos.
func TestSetStock_Fail_Negative(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	ctx := context.Background()

	_, err := svc.SetStock(ctx, productID, -1)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// TestSetStock_Success_Zero testa que zero é um valor absoluto válido.
func TestSetStock_Success_Zero(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	updated := domain.Inventory{ID: uuid.New().String(), ProductID: productID, Quantity: 0, MinStockLevel: 5}

	mockRepo.On("SetQuantity", mock.Anything, productID, 0).Return(updated, nil)

	ctx := context.Background()
	result, err := svc.SetStock(ctx, productID, 0)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Quantity)
	assert.True(t, domain.IsLowStock(result))
	mockRepo.AssertExpectations(t)
}

// statefulLedgerRepo aplica os deltas sobre um registro em memória, com a
// mesma guarda de não-negatividade da persistência real. Permite exercitar
// sequências de ajustes de ponta a ponta pelo serviço.
type statefulLedgerRepo struct {
	MockInventoryRepository
	record domain.Inventory
}

func (s *statefulLedgerRepo) AdjustQuantity(ctx context.Context, productID string, delta int) (domain.Inventory, error) {
	next := s.record.Quantity + delta
	if next < 0 {
		return domain.Inventory{}, apperror.NewInsufficientStockError(
			"Quantidade disponível é menor que a solicitada.")
	}
	s.record.Quantity = next
	s.record.LastUpdated = time.Now()
	return s.record, nil
}

// TestAddThenRemoveStock_RestoresQuantity testa a propriedade de ida-e-volta:
// adicionar n e em seguida remover n devolve o registro à quantidade original.
func TestAddThenRemoveStock_RestoresQuantity(t *testing.T) {
	mockLogger := logger.NewLogger("debug")

	productID := uuid.New().String()
	repo := &statefulLedgerRepo{
		record: domain.Inventory{
			ID:            uuid.New().String(),
			ProductID:     productID,
			Quantity:      10,
			MinStockLevel: 5,
		},
	}

	svc := inventoryservice.NewService(repo, mockLogger)
	ctx := context.Background()

	afterAdd, err := svc.AddStock(ctx, productID, 4)
	assert.NoError(t, err)
	assert.Equal(t, 14, afterAdd.Quantity)

	afterRemove, err := svc.RemoveStock(ctx, productID, 4)
	assert.NoError(t, err)
	assert.Equal(t, 10, afterRemove.Quantity)

	// Uma remoção além do disponível falha e não altera o estado restaurado.
	_, err = svc.RemoveStock(ctx, productID, 11)
	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	assert.Equal(t, 10, repo.record.Quantity)
}

// TestGetInventoryByID_Fail_InvalidUUID testa a validação de formato do ID.
func TestGetInventoryByID_Fail_InvalidUUID(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	ctx := context.Background()
	_, err := svc.GetInventoryByID(ctx, "nao-e-um-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestDeleteInventory_Success testa a exclusão de um registro existente.
func TestDeleteInventory_Success(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	mockRepo.On("Delete", mock.Anything, id).Return(nil)

	ctx := context.Background()
	err := svc.DeleteInventory(ctx, id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
