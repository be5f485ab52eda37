package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"stocktrack/config"
	"stocktrack/internal/pkg/database"
)

// Runner de migrações (goose). Uso:
//
//	go run ./cmd/migrate            # aplica todas as migrações pendentes
//	go run ./cmd/migrate down       # desfaz a última migração
//	go run ./cmd/migrate status
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema: %v", err)
	}

	cfg := config.LoadConfig()

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com os arquivos de migração")
	flag.Parse()

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("goose: falha ao conectar ao DB: %v\n", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: falha ao fechar conexão com o DB: %v\n", err)
		}
	}()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s concluído com sucesso\n", command)
}
