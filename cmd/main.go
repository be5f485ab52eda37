package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"stocktrack/config"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/database"
	"stocktrack/internal/pkg/logger"

	// Camadas da aplicação para Injeção de Dependências
	"stocktrack/internal/api/admin"
	"stocktrack/internal/api/category"
	"stocktrack/internal/api/inventory"
	"stocktrack/internal/api/product"
	"stocktrack/internal/api/router"
	"stocktrack/internal/repository/adminrepo"
	"stocktrack/internal/repository/categoryrepo"
	"stocktrack/internal/repository/inventoryrepo"
	"stocktrack/internal/repository/productrepo"
	"stocktrack/internal/service/adminservice"
	"stocktrack/internal/service/categoryservice"
	"stocktrack/internal/service/inventoryservice"
	"stocktrack/internal/service/productservice"
)

// @title StockTrack API
// @version 1.0
// @description API de rastreamento de estoque: catálogo de produtos e categorias, ledger de inventário e ajustes de estoque.
// @BasePath /v1
func main() {
	// 0. Carregar variáveis de ambiente (.env)
	// Se o arquivo .env não for encontrado, seguimos: as variáveis essenciais
	// podem estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Inicialização
	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	categoryRepo := categoryrepo.NewCategoryRepository(db, cfg.DBTimeout, log)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	inventoryRepo := inventoryrepo.NewInventoryRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	adminRepo := adminrepo.NewAdminRepository(db, cacheClient, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	categorySvc := categoryservice.NewService(categoryRepo, log)
	productSvc := productservice.NewService(productRepo, log)
	inventorySvc := inventoryservice.NewService(inventoryRepo, log)
	adminSvc := adminservice.NewService(adminRepo, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	categoryHandler := category.NewHandler(categorySvc, log)
	productHandler := product.NewHandler(productSvc, log)
	inventoryHandler := inventory.NewHandler(inventorySvc, log)
	adminHandler := admin.NewHandler(adminSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(
		categoryHandler,
		productHandler,
		inventoryHandler,
		adminHandler,
		cacheClient,
		cfg.RateLimitMaxRequests,
		cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor StockTrack ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
