package config

import (
	"os"
	"strconv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	DesignsDBPath  string
	MigrationsPath string
	CompatPath     string
	CatalogPath    string // пусто — встроенный каталог
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		DesignsDBPath:  getEnv("DESIGNS_DB_PATH", "data/db/designs.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_init_designs.sql"),
		CompatPath:     getEnv("COMPAT_TABLE_PATH", "configs/compatibility.yaml"),
		CatalogPath:    getEnv("CATALOG_PATH", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
