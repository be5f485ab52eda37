package productservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCreateProduct_Success testa a criação de um produto válido.
func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	categoryID := uuid.New().String()
	sku := "ELEC-001"
	input := domain.Product{
		SKU:        &sku,
		Name:       "Notebook 14\"",
		Price:      decimal.NewFromFloat(3499.90),
		CategoryID: &categoryID,
	}
	created := input
	created.ID = uuid.New().String()

	mockRepo.On("Save", mock.Anything, input).Return(created, nil)

	ctx := context.Background()
	result, err := svc.CreateProduct(ctx, input)

	assert.NoError(t, err)
	assert.Equal(t, created.ID, result.ID)
	assert.Equal(t, "ELEC-001", *result.SKU)
	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_Success_WithoutSKU testa que o SKU é opcional: produtos
// sem SKU passam pela validação e são persistidos com o campo ausente, sem
// conflitar entre si.
func TestCreateProduct_Success_WithoutSKU(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	first := domain.Product{Name: "Mouse sem fio", Price: decimal.NewFromFloat(89.90)}
	second := domain.Product{Name: "Teclado mecânico", Price: decimal.NewFromFloat(349.90)}

	createdFirst := first
	createdFirst.ID = uuid.New().String()
	createdSecond := second
	createdSecond.ID = uuid.New().String()

	mockRepo.On("Save", mock.Anything, first).Return(createdFirst, nil)
	mockRepo.On("Save", mock.Anything, second).Return(createdSecond, nil)

	ctx := context.Background()

	resultFirst, err := svc.CreateProduct(ctx, first)
	assert.NoError(t, err)
	assert.Nil(t, resultFirst.SKU)

	resultSecond, err := svc.CreateProduct(ctx, second)
	assert.NoError(t, err)
	assert.Nil(t, resultSecond.SKU)

	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_Fail_Validation testa as regras do catálogo: nome vazio,
// preço negativo e categoria com formato inválido.
func TestCreateProduct_Fail_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, domain.Product{Name: ""})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.CreateProduct(ctx, domain.Product{Name: "Fone", Price: decimal.NewFromInt(-1)})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	badCategory := "nao-e-um-uuid"
	_, err = svc.CreateProduct(ctx, domain.Product{Name: "Fone", CategoryID: &badCategory})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_Fail_UnknownCategory testa a criação referenciando uma
// categoria inexistente (FK violada no repositório).
func TestCreateProduct_Fail_UnknownCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	categoryID := uuid.New().String()
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("domain.Product")).
		Return(domain.Product{}, apperror.NewNotFoundError("Categoria não encontrada para o produto."))

	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, domain.Product{Name: "Fone", CategoryID: &categoryID})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestGetProducts_FilterByCategory testa a listagem filtrada por categoria.
func TestGetProducts_FilterByCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	categoryID := uuid.New().String()
	expected := []domain.Product{
		{ID: uuid.New().String(), Name: "Notebook", CategoryID: &categoryID},
	}

	mockRepo.On("FindAll", mock.Anything, domain.ProductFilter{CategoryID: categoryID}).
		Return(expected, nil)

	ctx := context.Background()
	result, err := svc.GetProducts(ctx, categoryID)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	mockRepo.AssertExpectations(t)
}

// TestGetProducts_Fail_InvalidCategoryID testa a validação do filtro.
func TestGetProducts_Fail_InvalidCategoryID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	ctx := context.Background()
	_, err := svc.GetProducts(ctx, "abc")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

// TestGetProductsWithoutInventory_Success testa a consulta de produtos que
// ainda não possuem registro de inventário.
func TestGetProductsWithoutInventory_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	sku := "FURN-001"
	expected := []domain.Product{
		{ID: uuid.New().String(), Name: "Cadeira de Escritório", SKU: &sku},
	}

	mockRepo.On("FindAll", mock.Anything, domain.ProductFilter{WithoutInventory: true}).
		Return(expected, nil)

	ctx := context.Background()
	result, err := svc.GetProductsWithoutInventory(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "FURN-001", *result[0].SKU)
	mockRepo.AssertExpectations(t)
}

// TestDeleteProduct_Success testa a exclusão de um produto.
func TestDeleteProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	mockRepo.On("Delete", mock.Anything, id).Return(nil)

	ctx := context.Background()
	err := svc.DeleteProduct(ctx, id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestDeleteProduct_Fail_InvalidUUID testa a validação de formato do ID.
func TestDeleteProduct_Fail_InvalidUUID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	ctx := context.Background()
	err := svc.DeleteProduct(ctx, "xyz")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
