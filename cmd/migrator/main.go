package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/linemk/eshop/internal/config"
)

// Таблица, в которой golang-migrate хранит версию схемы магазина.
const migrationsTable = "eshop_schema_migrations"

// dsn собирает строку подключения; extra добавляется к параметрам запроса.
func dsn(dbCfg config.DatabaseConfig, dbPassword, extra string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable%s",
		dbCfg.User, dbPassword, dbCfg.Host, dbCfg.Port, dbCfg.Name, extra,
	)
}

func main() {
	var migrationsPathFlag string
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files (overrides config)")

	cfg := config.MustLoad() // внутри вызывает flag.Parse

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		log.Fatal("DB_PASSWORD environment variable is required")
	}

	m, err := migrate.New(
		"file://"+migrationsPath,
		dsn(cfg.Database, dbPassword, "&x-migrations-table="+migrationsTable),
	)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("schema is up to date, nothing to apply")
		} else {
			log.Fatalf("migration failed: %v", err)
		}
	} else {
		log.Println("shop schema migrated")
	}

	// Контрольный вывод: перечисляем таблицы, чтобы увидеть итог миграции.
	db, err := sql.Open("postgres", dsn(cfg.Database, dbPassword, ""))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		log.Fatalf("failed to query tables: %v", err)
	}
	defer rows.Close()

	log.Println("tables in the shop database:")
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			log.Fatalf("failed to scan row: %v", err)
		}
		log.Println(" -", tableName)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("error reading rows: %v", err)
	}
}
