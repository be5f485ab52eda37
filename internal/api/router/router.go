package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "stocktrack/docs" // Registro da especificação Swagger gerada
	"stocktrack/internal/api/admin"
	"stocktrack/internal/api/category"
	"stocktrack/internal/api/inventory"
	"stocktrack/internal/api/product"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
//
// Usamos o ServeMux padrão do net/http para roteamento; em projetos maiores,
// pode-se usar um mux de terceiros (e.g., gorilla/mux, chi).
func NewRouter(
	categoryHandler *category.Handler,
	productHandler *product.Handler,
	inventoryHandler *inventory.Handler,
	adminHandler *admin.Handler,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	mux := http.NewServeMux()

	// --- 1. Health Check e Documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.Handler())

	// --- 2. Rotas de Categorias (v1) ---
	mux.HandleFunc("/v1/categories", categoryHandler.CategoriesHandler)
	mux.HandleFunc("/v1/categories/", categoryHandler.CategoryByIDHandler)

	// --- 3. Rotas de Produtos (v1) ---
	// O caminho exato vence o prefixo no ServeMux, então without-inventory
	// não colide com /v1/products/{id}.
	mux.HandleFunc("/v1/products", productHandler.ProductsHandler)
	mux.HandleFunc("/v1/products/without-inventory", productHandler.WithoutInventoryHandler)
	mux.HandleFunc("/v1/products/", productHandler.ProductByIDHandler)

	// --- 4. Rotas de Inventário (v1) ---
	mux.HandleFunc("/v1/inventory", inventoryHandler.InventoryHandler)
	mux.HandleFunc("/v1/inventory/low-stock", inventoryHandler.LowStockHandler)
	mux.HandleFunc("/v1/inventory/product/", inventoryHandler.InventoryByProductHandler)
	mux.HandleFunc("/v1/inventory/", inventoryHandler.InventoryByIDHandler)

	// --- 5. Rotas Administrativas (v1) ---
	mux.HandleFunc("/v1/admin/data", adminHandler.CleanupHandler)

	// --- 6. Middlewares Globais ---
	rateLimiter := middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)

	return rateLimiter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
